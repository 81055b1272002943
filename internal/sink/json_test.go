package sink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/linecap/internal/core"
)

const wantIndented = `{
  "5": {
    "line_name": "君津線",
    "voltage_kv": 275,
    "capacity_mw": 1200,
    "note": "♯1"
  },
  "7": {
    "line_name": "北線",
    "voltage_kv": 154,
    "capacity_mw": 12.0,
    "note": null
  }
}
`

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, testResult().Store, DefaultIndent); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if buf.String() != wantIndented {
		t.Errorf("EncodeJSON() =\n%s\nwant\n%s", buf.String(), wantIndented)
	}
}

func TestEncodeJSONCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, core.NewStore(), ""); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if buf.String() != "{}\n" {
		t.Errorf("EncodeJSON() = %q, want {}\\n", buf.String())
	}
}

func TestJSONFileWrite(t *testing.T) {
	dir := t.TempDir()
	s := &JSONFile{Path: filepath.Join(dir, "out", "{layout}.json"), Indent: DefaultIndent}

	if err := s.Write(context.Background(), testResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "out", "test-lines.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != wantIndented {
		t.Errorf("file =\n%s\nwant\n%s", got, wantIndented)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestJSONFileWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s := &JSONFile{Path: filepath.Join(blocker, "out.json")}
	err := s.Write(context.Background(), testResult())
	if !errors.Is(err, core.ErrSink) {
		t.Errorf("Write() error = %v, want ErrSink", err)
	}
}
