package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// GCS uploads the JSON store to a Cloud Storage object.
type GCS struct {
	Bucket *storage.BucketHandle
	Object string // May contain {layout} and {run_id}

	// IfAbsent skips the upload when the object already exists, which makes
	// re-running with a run-scoped object name idempotent.
	IfAbsent bool
}

func (g *GCS) Name() string { return "gcs" }

func (g *GCS) Write(ctx context.Context, res *core.Result) error {
	name := expandName(g.Object, res)
	logger := logging.WithFields(ctx, "run_id", res.RunID)

	var body bytes.Buffer
	if err := EncodeJSON(&body, res.Store, DefaultIndent); err != nil {
		return sinkError(g.Name(), err)
	}

	obj := g.Bucket.Object(name)
	if g.IfAbsent {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json; charset=utf-8"

	if _, err := io.Copy(w, &body); err != nil {
		_ = w.Close()
		return sinkError(g.Name(), fmt.Errorf("upload %s: %w", name, err))
	}
	if err := w.Close(); err != nil {
		if g.IfAbsent && isPreconditionFailed(err) {
			logger.Info("output exists, skipping", "sink", g.Name(), "object", name)
			return nil
		}
		return sinkError(g.Name(), fmt.Errorf("finalize %s: %w", name, err))
	}

	logger.Info("output written",
		"sink", g.Name(),
		"object", name,
		"records", res.Store.Len(),
	)
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
