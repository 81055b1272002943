package sink

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
)

// maxSheetName is Excel's limit on worksheet name length.
const maxSheetName = 31

// XLSXFile writes the store as a worksheet: a header row of "key" plus the
// layout's field names, then one row per record. Absent values are blank.
type XLSXFile struct {
	Path string // May contain {layout} and {run_id}
}

func (x *XLSXFile) Name() string { return "xlsx" }

func (x *XLSXFile) Write(ctx context.Context, res *core.Result) error {
	path := expandName(x.Path, res)
	if err := writeAtomic(path, func(w io.Writer) error {
		return EncodeXLSX(w, res.Layout, res.Store)
	}); err != nil {
		return sinkError(x.Name(), err)
	}

	logging.WithFields(ctx, "run_id", res.RunID).Info("output written",
		"sink", x.Name(),
		"path", path,
		"records", res.Store.Len(),
	)
	return nil
}

// EncodeXLSX renders the store as a single-sheet workbook.
func EncodeXLSX(w io.Writer, layout core.Layout, store *core.Store) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(layout.Key)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := []any{"key"}
	for _, name := range layout.FieldNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range store.Records() {
		row := make([]any, 0, len(rec.Fields)+1)
		row = append(row, rec.Key)
		for _, field := range rec.Fields {
			row = append(row, field.Value.Any())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write record %s: %w", rec.Key, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	_, err := f.WriteTo(w)
	return err
}

func sheetName(key string) string {
	if key == "" {
		return "records"
	}
	r := []rune(key)
	if len(r) > maxSheetName {
		r = r[:maxSheetName]
	}
	return string(r)
}
