package sink

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/JonMunkholm/linecap/internal/config"
)

// Build assembles the sinks selected by cfg, plus pg when it is non-nil.
// It returns a nil Sink when no output is configured. The close function
// releases any cloud clients Build opened and is never nil.
func Build(ctx context.Context, cfg config.OutputConfig, pg *Postgres) (Sink, func() error, error) {
	var (
		sinks   []Sink
		closers []func() error
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	if cfg.JSONPath != "" {
		sinks = append(sinks, &JSONFile{Path: cfg.JSONPath, Indent: DefaultIndent})
	}
	if cfg.XLSXPath != "" {
		sinks = append(sinks, &XLSXFile{Path: cfg.XLSXPath})
	}

	if cfg.GCSBucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("storage client: %w", err)
		}
		closers = append(closers, client.Close)
		sinks = append(sinks, &GCS{
			Bucket:   client.Bucket(cfg.GCSBucket),
			Object:   cfg.GCSObject,
			IfAbsent: cfg.GCSIfAbsent,
		})
	}

	if cfg.FirestoreCollection != "" {
		client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		closers = append(closers, client.Close)
		sinks = append(sinks, &Firestore{Client: client, Collection: cfg.FirestoreCollection})
	}

	if pg != nil {
		sinks = append(sinks, pg)
	}

	switch len(sinks) {
	case 0:
		return nil, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return &Multi{Sinks: sinks}, closeAll, nil
	}
}
