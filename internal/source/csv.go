package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/linecap/internal/core"
)

// CSV reads a delimited text file as a single region. Page selection does
// not apply to it.
type CSV struct {
	Path  string
	Opts  Options
	Comma rune
}

// NewCSV creates a comma separated source.
func NewCSV(path string, opts Options) *CSV {
	return &CSV{Path: path, Opts: opts, Comma: ','}
}

func (c *CSV) Regions(ctx context.Context) iter.Seq2[core.Region, error] {
	return func(yield func(core.Region, error) bool) {
		f, err := os.Open(c.Path)
		if err != nil {
			yield(core.Region{}, fmt.Errorf("open csv: %w", err))
			return
		}
		defer f.Close()

		rows, err := ReadDelimited(ctx, f, c.Comma, c.Opts.Encoding)
		if err != nil {
			yield(core.Region{}, err)
			return
		}
		yield(core.Region{Name: filepath.Base(c.Path), Rows: rows}, nil)
	}
}

// ReadDelimited decodes r from the named encoding and reads every record.
// Rows may differ in length; quoting is lenient since exported report
// tables are rarely strict about it.
func ReadDelimited(ctx context.Context, r io.Reader, comma rune, encoding string) ([][]string, error) {
	decoded, err := decodeReader(r, encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
}

// decodeReader wraps r to produce UTF-8. The default decoder strips a
// leading byte order mark and replaces invalid sequences with U+FFFD.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	name := strings.ToLower(strings.TrimSpace(encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q", core.ErrUnsupportedFormat, encoding)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
