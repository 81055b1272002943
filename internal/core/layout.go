package core

// layout.go describes the fixed column layout of one document family.
//
// A Layout is the only thing that ties the classifier and assembler to a
// particular report: which column holds the identifying code, which holds the
// entity label, how to tell lines from substations, and which columns become
// which output fields. Layouts are fixed per family and supplied at startup,
// either from the built-in registry or from a YAML file.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLayout is returned when a layout fails validation.
var ErrInvalidLayout = errors.New("invalid layout")

// FieldSpec maps one output field to a source column.
type FieldSpec struct {
	Name   string   `yaml:"name" json:"name"`                       // Output field name
	Column int      `yaml:"column" json:"column"`                   // Zero-based column index
	Units  []string `yaml:"units,omitempty" json:"units,omitempty"` // Suffixes stripped before normalizing ("kV")
}

// TableArea clips page content to a rectangle before table detection.
// Coordinates are PDF points: (Left, Top) is the upper-left corner and
// (Right, Bottom) the lower-right, with the origin at the bottom of the page.
type TableArea struct {
	Left   float64 `yaml:"left" json:"left"`
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
}

// Contains reports whether the point (x, y) lies inside the area.
func (a TableArea) Contains(x, y float64) bool {
	return x >= a.Left && x <= a.Right && y <= a.Top && y >= a.Bottom
}

// ParseTableArea parses "left,top,right,bottom".
func ParseTableArea(s string) (TableArea, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return TableArea{}, fmt.Errorf("table area %q: want left,top,right,bottom", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, ok := parseFloat(strings.TrimSpace(p))
		if !ok {
			return TableArea{}, fmt.Errorf("table area %q: invalid coordinate %q", s, p)
		}
		v[i] = f
	}
	a := TableArea{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if a.Left >= a.Right || a.Bottom >= a.Top {
		return TableArea{}, fmt.Errorf("table area %q: empty rectangle", s)
	}
	return a, nil
}

// Layout is the column layout of one document family.
type Layout struct {
	Key   string `yaml:"key" json:"key"`     // Registry key: "tepco-trunk"
	Label string `yaml:"label" json:"label"` // Display name

	// MinColumns rejects rows shorter than this outright.
	MinColumns int `yaml:"min_columns" json:"minColumns"`

	// CompleteColumns is the width of a row carrying every field. Accepted
	// rows shorter than this are reported and, unless KeepIncomplete is set,
	// skipped.
	CompleteColumns int  `yaml:"complete_columns" json:"completeColumns"`
	KeepIncomplete  bool `yaml:"keep_incomplete" json:"keepIncomplete"`

	CodeColumn  int `yaml:"code_column" json:"codeColumn"`
	LabelColumn int `yaml:"label_column" json:"labelColumn"`

	// RequiredLabelMarker must appear in the label of a data row.
	// ExcludedLabelMarker must not; it separates entities that share the
	// required marker (a substation whose name contains the line marker).
	RequiredLabelMarker string `yaml:"required_label_marker" json:"requiredLabelMarker"`
	ExcludedLabelMarker string `yaml:"excluded_label_marker" json:"excludedLabelMarker"`

	// Fields lists output fields in output order.
	Fields []FieldSpec `yaml:"fields" json:"fields"`

	// Extraction hints for the region source; not used by the core.
	Pages     []int      `yaml:"pages,omitempty" json:"pages,omitempty"`
	TableArea *TableArea `yaml:"-" json:"tableArea,omitempty"`
}

// FieldNames returns the output field names in layout order.
func (l Layout) FieldNames() []string {
	names := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks the layout for internal consistency.
// Returns an error describing all problems at once.
func (l Layout) Validate() error {
	var errs []string

	if strings.TrimSpace(l.Key) == "" {
		errs = append(errs, "key is required")
	}
	if l.MinColumns <= 0 {
		errs = append(errs, "min_columns must be positive")
	}
	if l.CompleteColumns < l.MinColumns {
		errs = append(errs, fmt.Sprintf("complete_columns (%d) must be >= min_columns (%d)", l.CompleteColumns, l.MinColumns))
	}
	if l.CodeColumn < 0 || l.CodeColumn >= l.MinColumns {
		errs = append(errs, fmt.Sprintf("code_column (%d) must be within min_columns (%d)", l.CodeColumn, l.MinColumns))
	}
	if l.LabelColumn < 0 || l.LabelColumn >= l.MinColumns {
		errs = append(errs, fmt.Sprintf("label_column (%d) must be within min_columns (%d)", l.LabelColumn, l.MinColumns))
	}
	if l.CodeColumn == l.LabelColumn {
		errs = append(errs, "code_column and label_column must differ")
	}
	if l.RequiredLabelMarker != "" && l.RequiredLabelMarker == l.ExcludedLabelMarker {
		errs = append(errs, "required and excluded label markers must differ")
	}
	if len(l.Fields) == 0 {
		errs = append(errs, "at least one field is required")
	}

	seen := make(map[string]bool, len(l.Fields))
	for i, f := range l.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Sprintf("fields[%d]: name is required", i))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("fields[%d]: duplicate name %q", i, f.Name))
		}
		seen[f.Name] = true
		if f.Column < 0 {
			errs = append(errs, fmt.Sprintf("field %q: column must be non-negative", f.Name))
		}
		if f.Column >= l.CompleteColumns && l.CompleteColumns > 0 {
			errs = append(errs, fmt.Sprintf("field %q: column %d beyond complete_columns (%d)", f.Name, f.Column, l.CompleteColumns))
		}
	}

	for _, p := range l.Pages {
		if p < 1 {
			errs = append(errs, fmt.Sprintf("page %d: pages are 1-based", p))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w %q:\n  - %s", ErrInvalidLayout, l.Key, strings.Join(errs, "\n  - "))
	}
	return nil
}

// yamlLayout lets table_area be either a mapping or the
// "left,top,right,bottom" shorthand used on the command line.
type yamlLayout struct {
	Layout    `yaml:",inline"`
	TableArea yaml.Node `yaml:"table_area"`
}

// DecodeLayout reads a YAML layout document and validates it.
func DecodeLayout(r io.Reader) (Layout, error) {
	var doc yamlLayout
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}

	layout := doc.Layout
	switch doc.TableArea.Kind {
	case 0:
		// not set
	case yaml.ScalarNode:
		area, err := ParseTableArea(doc.TableArea.Value)
		if err != nil {
			return Layout{}, fmt.Errorf("decode layout: %w", err)
		}
		layout.TableArea = &area
	default:
		var area TableArea
		if err := doc.TableArea.Decode(&area); err != nil {
			return Layout{}, fmt.Errorf("decode layout table_area: %w", err)
		}
		layout.TableArea = &area
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// LoadLayoutFile reads and validates a YAML layout file.
func LoadLayoutFile(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()

	layout, err := DecodeLayout(f)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}
