package layouts

import (
	"testing"

	"github.com/JonMunkholm/linecap/internal/core"
)

func TestTepcoTrunkRegistered(t *testing.T) {
	l, err := core.LookupLayout(TepcoTrunkKey)
	if err != nil {
		t.Fatalf("LookupLayout() error = %v", err)
	}

	if got := len(l.Fields); got != 12 {
		t.Errorf("len(Fields) = %d, want 12", got)
	}
	if l.Fields[0].Name != "line_name" {
		t.Errorf("first field = %q, want line_name", l.Fields[0].Name)
	}
	if l.TableArea == nil || l.TableArea.Top != 480 {
		t.Errorf("TableArea = %+v, want top 480", l.TableArea)
	}
}

func TestTepcoTrunkRows(t *testing.T) {
	l, err := core.LookupLayout(TepcoTrunkKey)
	if err != nil {
		t.Fatalf("LookupLayout() error = %v", err)
	}

	line := []string{"", "275kV", "12", "新京葉線", "", "2", "1,200", "900", "熱容量", "150", "-", "有", "300", "無", "-"}
	substation := []string{"", "275kV", "13", "新京葉変電所線", "", "2", "1,200", "900", "熱容量", "150", "-", "有", "300", "無", "-"}
	header := []string{"", "電圧", "No.", "設備名", "", "回線数", "設備容量", "運用容量", "制約", "空容量", "上位", "N-1", "制限", "出力制御", "要否"}

	store := core.Assemble([]core.Region{{Page: 7, Rows: [][]string{header, line, substation}}}, l, nil)

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	rec, ok := store.Get("12")
	if !ok {
		t.Fatal("record 12 missing")
	}

	if v, ok := rec.Get("voltage_kv").Int(); !ok || v != 275 {
		t.Errorf("voltage_kv = %v, want 275", rec.Get("voltage_kv"))
	}
	if v, ok := rec.Get("equipment_capacity_mw").Int(); !ok || v != 1200 {
		t.Errorf("equipment_capacity_mw = %v, want 1200", rec.Get("equipment_capacity_mw"))
	}
	if !rec.Get("available_upstream_mw").IsAbsent() {
		t.Errorf("available_upstream_mw = %v, want absent", rec.Get("available_upstream_mw"))
	}
	if s, _ := rec.Get("capacity_constraint").Text(); s != "熱容量" {
		t.Errorf("capacity_constraint = %q, want 熱容量", s)
	}
}

func TestTepcoTrunkFullWidthUnit(t *testing.T) {
	l, _ := core.LookupLayout(TepcoTrunkKey)

	row := make([]string, 15)
	row[1] = "１５４ｋV"
	row[2] = "3"
	row[3] = "北線"

	store := core.Assemble([]core.Region{{Rows: [][]string{row}}}, l, nil)
	rec, ok := store.Get("3")
	if !ok {
		t.Fatal("record 3 missing")
	}
	if v, ok := rec.Get("voltage_kv").Int(); !ok || v != 154 {
		t.Errorf("voltage_kv = %v, want 154", rec.Get("voltage_kv"))
	}
}

func TestTepcoTrunkClassifyExamples(t *testing.T) {
	l, err := core.LookupLayout(TepcoTrunkKey)
	if err != nil {
		t.Fatalf("LookupLayout() error = %v", err)
	}

	row := func(code, label string) []string {
		r := make([]string, 12)
		r[2] = code
		r[3] = label
		return r
	}

	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"line", row("8", "新袖ヶ浦線"), true},
		{"substation", row("8", "新袖ヶ浦変電所"), false},
		{"substation line", row("8", "新袖ヶ浦変電所線"), false},
		{"letter code", row("abc", "新袖ヶ浦線"), false},
		{"short row", row("8", "新袖ヶ浦線")[:11], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.IsDataRow(tt.row); got != tt.want {
				t.Errorf("IsDataRow(%q) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}
