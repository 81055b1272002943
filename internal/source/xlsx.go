package source

import (
	"context"
	"fmt"
	"iter"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// XLSX reads each selected worksheet as one region. Options.Pages selects
// sheets by 1-based position in the workbook.
type XLSX struct {
	Path string
	Opts Options
}

// NewXLSX creates a workbook source.
func NewXLSX(path string, opts Options) *XLSX {
	return &XLSX{Path: path, Opts: opts}
}

func (x *XLSX) Regions(ctx context.Context) iter.Seq2[core.Region, error] {
	return func(yield func(core.Region, error) bool) {
		f, err := excelize.OpenFile(x.Path)
		if err != nil {
			yield(core.Region{}, fmt.Errorf("open workbook: %w", err))
			return
		}
		defer f.Close()

		sheets := f.GetSheetList()
		selected, err := selectPages(x.Opts.Pages, len(sheets))
		if err != nil {
			yield(core.Region{}, err)
			return
		}

		for i, pos := range selected {
			if err := ctx.Err(); err != nil {
				yield(core.Region{}, err)
				return
			}

			name := sheets[pos-1]
			rows, err := f.GetRows(name)
			if err != nil {
				yield(core.Region{}, fmt.Errorf("sheet %q: %w", name, err))
				return
			}
			logging.FromContext(ctx).Debug("sheet read", "sheet", name, "rows", len(rows))

			if !yield(core.Region{Index: i, Page: pos, Name: name, Rows: rows}, nil) {
				return
			}
		}
	}
}
