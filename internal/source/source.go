// Package source reads table regions out of documents.
//
// Each source implements core.RegionSource. PDFs go through text fragment
// extraction and geometric table detection; workbooks and CSV files already
// hold a grid and become regions directly.
package source

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/linecap/internal/core"
)

// Options narrows what a source reads.
type Options struct {
	// Pages lists 1-based pages (PDF) or sheet positions (XLSX). Empty means all.
	Pages []int

	// TableArea keeps only PDF text inside this rectangle.
	TableArea *core.TableArea

	// Encoding names the CSV character set ("utf-8", "shift_jis", ...).
	// Empty means UTF-8 with an optional byte order mark.
	Encoding string
}

// OptionsFor returns the extraction hints carried by a layout.
func OptionsFor(l core.Layout) Options {
	return Options{
		Pages:     slices.Clone(l.Pages),
		TableArea: l.TableArea,
	}
}

// Override replaces the hints whose argument is non-empty. pages accepts
// ParsePages syntax, so "all" clears a layout's page list. area is
// "left,top,right,bottom".
func (o *Options) Override(pages, area, encoding string) error {
	if strings.TrimSpace(pages) != "" {
		p, err := ParsePages(pages)
		if err != nil {
			return err
		}
		o.Pages = p
	}
	if strings.TrimSpace(area) != "" {
		a, err := core.ParseTableArea(area)
		if err != nil {
			return err
		}
		o.TableArea = &a
	}
	if encoding != "" {
		o.Encoding = encoding
	}
	return nil
}

// Format identifies an input document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// DetectFormat maps a file name to its format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, filepath.Base(name))
	}
}

// Open returns a region source for the file at path.
func Open(path string, opts Options) (core.RegionSource, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return NewPDF(path, opts), nil
	case FormatXLSX:
		return NewXLSX(path, opts), nil
	case FormatTSV:
		src := NewCSV(path, opts)
		src.Comma = '\t'
		return src, nil
	default:
		return NewCSV(path, opts), nil
	}
}

// ParsePages parses a page selection such as "7-9" or "1,3,5-6".
func ParsePages(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || first < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || last < first {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// selectPages resolves a selection against a document of count pages.
// An empty selection means every page.
func selectPages(want []int, count int) ([]int, error) {
	if len(want) == 0 {
		all := make([]int, count)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	for _, p := range want {
		if p < 1 || p > count {
			return nil, fmt.Errorf("%w: %d (document has %d)", core.ErrPageRange, p, count)
		}
	}
	return want, nil
}
