package source

import (
	"context"
	"fmt"
	"iter"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// PDF extracts one region per table detected on each selected page.
type PDF struct {
	Path string
	Opts Options
}

// NewPDF creates a PDF source.
func NewPDF(path string, opts Options) *PDF {
	return &PDF{Path: path, Opts: opts}
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

func (p *PDF) Regions(ctx context.Context) iter.Seq2[core.Region, error] {
	return func(yield func(core.Region, error) bool) {
		logger := logging.WithFields(ctx, "source", p.Path)

		count, err := PageCount(p.Path)
		if err != nil {
			yield(core.Region{}, err)
			return
		}
		selected, err := selectPages(p.Opts.Pages, count)
		if err != nil {
			yield(core.Region{}, err)
			return
		}

		r, err := reader.Open(p.Path)
		if err != nil {
			yield(core.Region{}, fmt.Errorf("open pdf: %w", err))
			return
		}
		defer r.Close()

		detector := tables.NewGeometricDetector()
		index := 0

		for _, num := range selected {
			if err := ctx.Err(); err != nil {
				yield(core.Region{}, err)
				return
			}

			page, err := r.GetPage(num - 1)
			if err != nil {
				yield(core.Region{}, fmt.Errorf("page %d: %w", num, err))
				return
			}
			mp, err := modelPage(r, page, num, p.Opts.TableArea)
			if err != nil {
				yield(core.Region{}, fmt.Errorf("page %d: %w", num, err))
				return
			}

			found, err := detector.Detect(mp)
			if err != nil {
				yield(core.Region{}, fmt.Errorf("page %d: detect tables: %w", num, err))
				return
			}
			logger.Debug("page scanned", "page", num, "fragments", len(mp.RawText), "tables", len(found))

			for t, tbl := range found {
				region := core.Region{
					Index: index,
					Page:  num,
					Name:  fmt.Sprintf("page %d table %d", num, t+1),
					Rows:  tableRows(tbl),
				}
				index++
				if !yield(region, nil) {
					return
				}
			}
		}
	}
}

// modelPage converts a parsed PDF page into the layout model the table
// detector consumes, keeping only fragments inside area.
func modelPage(r *reader.Reader, page *pages.Page, number int, area *core.TableArea) (*model.Page, error) {
	width, err := page.Width()
	if err != nil {
		return nil, fmt.Errorf("page width: %w", err)
	}
	height, err := page.Height()
	if err != nil {
		return nil, fmt.Errorf("page height: %w", err)
	}

	frags, err := r.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	mp := model.NewPage(width, height)
	mp.Number = number
	mp.RawText = clipFragments(frags, area)
	return mp, nil
}

// clipFragments converts text fragments to the model form and drops those
// whose centre lies outside area. A nil area keeps everything.
func clipFragments(frags []text.TextFragment, area *core.TableArea) []model.TextFragment {
	out := make([]model.TextFragment, 0, len(frags))
	for _, f := range frags {
		if area != nil && !area.Contains(f.X+f.Width/2, f.Y+f.Height/2) {
			continue
		}
		out = append(out, model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		})
	}
	return out
}

// tableRows flattens a detected table to raw cell text.
func tableRows(t *model.Table) [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = c.Text
		}
		rows[i] = cells
	}
	return rows
}
