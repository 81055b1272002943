package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLayoutValidate(t *testing.T) {
	if err := lineLayout().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Layout)
		wantMsg string
	}{
		{"missing key", func(l *Layout) { l.Key = " " }, "key is required"},
		{"no min columns", func(l *Layout) { l.MinColumns = 0 }, "min_columns must be positive"},
		{"complete below min", func(l *Layout) { l.CompleteColumns = 2 }, "complete_columns (2)"},
		{"code outside min", func(l *Layout) { l.CodeColumn = 7 }, "code_column (7)"},
		{"same code and label", func(l *Layout) { l.LabelColumn = 2 }, "must differ"},
		{"no fields", func(l *Layout) { l.Fields = nil }, "at least one field"},
		{"duplicate field", func(l *Layout) { l.Fields = append(l.Fields, FieldSpec{Name: "name", Column: 0}) }, `duplicate name "name"`},
		{"field beyond complete", func(l *Layout) { l.Fields[0].Column = 9 }, "beyond complete_columns"},
		{"zero page", func(l *Layout) { l.Pages = []int{0} }, "pages are 1-based"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lineLayout()
			tt.mutate(&l)

			err := l.Validate()
			if !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("Validate() error = %v, want ErrInvalidLayout", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseTableArea(t *testing.T) {
	a, err := ParseTableArea("30, 480, 565, 40")
	if err != nil {
		t.Fatalf("ParseTableArea() error = %v", err)
	}
	if a != (TableArea{Left: 30, Top: 480, Right: 565, Bottom: 40}) {
		t.Errorf("ParseTableArea() = %+v", a)
	}
	if !a.Contains(100, 200) || a.Contains(10, 200) || a.Contains(100, 500) {
		t.Error("Contains() gave the wrong answer")
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "10,5,5,10"} {
		if _, err := ParseTableArea(bad); err == nil {
			t.Errorf("ParseTableArea(%q) error = nil, want error", bad)
		}
	}
}

const lineLayoutYAML = `
key: yaml-lines
label: YAML lines
min_columns: 5
complete_columns: 6
code_column: 2
label_column: 3
required_label_marker: 線
excluded_label_marker: 変
pages: [7, 8]
table_area: "30,480,565,40"
fields:
  - name: name
    column: 3
  - name: voltage_kv
    column: 1
    units: [kV]
`

func TestDecodeLayout(t *testing.T) {
	l, err := DecodeLayout(strings.NewReader(lineLayoutYAML))
	if err != nil {
		t.Fatalf("DecodeLayout() error = %v", err)
	}

	if l.Key != "yaml-lines" || l.CodeColumn != 2 || l.RequiredLabelMarker != "線" {
		t.Errorf("DecodeLayout() = %+v", l)
	}
	if l.TableArea == nil || l.TableArea.Right != 565 {
		t.Errorf("TableArea = %+v, want right 565", l.TableArea)
	}
	if got := l.FieldNames(); len(got) != 2 || got[1] != "voltage_kv" {
		t.Errorf("FieldNames() = %v", got)
	}
	if len(l.Fields[1].Units) != 1 || l.Fields[1].Units[0] != "kV" {
		t.Errorf("Units = %v, want [kV]", l.Fields[1].Units)
	}
}

func TestDecodeLayoutTableAreaMapping(t *testing.T) {
	doc := strings.Replace(lineLayoutYAML, `table_area: "30,480,565,40"`,
		"table_area:\n  left: 1\n  top: 9\n  right: 8\n  bottom: 2", 1)

	l, err := DecodeLayout(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeLayout() error = %v", err)
	}
	if *l.TableArea != (TableArea{Left: 1, Top: 9, Right: 8, Bottom: 2}) {
		t.Errorf("TableArea = %+v", *l.TableArea)
	}
}

func TestDecodeLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", lineLayoutYAML + "colour: red\n"},
		{"bad area", strings.Replace(lineLayoutYAML, "30,480,565,40", "1,2", 1)},
		{"invalid layout", strings.Replace(lineLayoutYAML, "min_columns: 5", "min_columns: 0", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeLayout(strings.NewReader(tt.doc)); err == nil {
				t.Error("DecodeLayout() error = nil, want error")
			}
		})
	}
}

func TestLoadLayoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(lineLayoutYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayoutFile(path)
	if err != nil {
		t.Fatalf("LoadLayoutFile() error = %v", err)
	}
	if l.Key != "yaml-lines" {
		t.Errorf("Key = %q, want yaml-lines", l.Key)
	}

	if _, err := LoadLayoutFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadLayoutFile(missing) error = nil, want error")
	}
}
