package sink

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// Firestore writes one document per record. Document IDs are
// "<layout>_<key>", so a later run overwrites the same documents.
type Firestore struct {
	Client     *firestore.Client
	Collection string
}

func (f *Firestore) Name() string { return "firestore" }

func (f *Firestore) Write(ctx context.Context, res *core.Result) error {
	coll := f.Client.Collection(f.Collection)
	bw := f.Client.BulkWriter(ctx)

	jobs := make([]*firestore.BulkWriterJob, 0, res.Store.Len())
	for _, rec := range res.Store.Records() {
		job, err := bw.Set(coll.Doc(documentID(res.Layout.Key, rec.Key)), recordDocument(res, rec))
		if err != nil {
			bw.End()
			return sinkError(f.Name(), fmt.Errorf("queue record %s: %w", rec.Key, err))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return sinkError(f.Name(), fmt.Errorf("write record %d: %w", i, err))
		}
	}

	logging.WithFields(ctx, "run_id", res.RunID).Info("output written",
		"sink", f.Name(),
		"collection", f.Collection,
		"records", len(jobs),
	)
	return nil
}

// documentID builds a Firestore-safe document ID.
func documentID(layout, key string) string {
	return strings.ReplaceAll(layout+"_"+key, "/", "_")
}

// recordDocument flattens a record into document fields. Absent values are
// stored as null so every document carries every field.
func recordDocument(res *core.Result, rec core.Record) map[string]any {
	fields := make(map[string]any, len(rec.Fields))
	for _, f := range rec.Fields {
		fields[f.Name] = f.Value.Any()
	}
	return map[string]any{
		"layout":      res.Layout.Key,
		"key":         rec.Key,
		"runId":       res.RunID,
		"extractedAt": res.StartedAt,
		"fields":      fields,
	}
}
