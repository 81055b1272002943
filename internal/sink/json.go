package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// DefaultIndent matches the two-space indentation of the published files.
const DefaultIndent = "  "

// EncodeJSON writes the store as one JSON object keyed by record key.
// Non-ASCII text is written as is and absent values are null.
func EncodeJSON(w io.Writer, store *core.Store, indent string) error {
	raw, err := store.MarshalJSON()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if indent == "" {
		buf.Write(raw)
	} else if err := json.Indent(&buf, raw, "", indent); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err = w.Write(buf.Bytes())
	return err
}

// JSONFile writes the store to a file. The file is replaced atomically so a
// failed write never leaves a truncated result behind.
type JSONFile struct {
	Path   string // May contain {layout} and {run_id}
	Indent string
}

func (j *JSONFile) Name() string { return "json" }

func (j *JSONFile) Write(ctx context.Context, res *core.Result) error {
	path := expandName(j.Path, res)
	if err := writeAtomic(path, func(w io.Writer) error {
		return EncodeJSON(w, res.Store, j.Indent)
	}); err != nil {
		return sinkError(j.Name(), err)
	}

	logging.WithFields(ctx, "run_id", res.RunID).Info("output written",
		"sink", j.Name(),
		"path", path,
		"records", res.Store.Len(),
	)
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
