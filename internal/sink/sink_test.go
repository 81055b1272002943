package sink

import (
	"time"

	"github.com/JonMunkholm/linecap/internal/core"
)

func testLayout() core.Layout {
	return core.Layout{
		Key:                 "test-lines",
		MinColumns:          4,
		CompleteColumns:     5,
		CodeColumn:          1,
		LabelColumn:         2,
		RequiredLabelMarker: "線",
		Fields: []core.FieldSpec{
			{Name: "line_name", Column: 2},
			{Name: "voltage_kv", Column: 0, Units: []string{"kV"}},
			{Name: "capacity_mw", Column: 3},
			{Name: "note", Column: 4},
		},
	}
}

// testResult assembles two records: one fully populated, one with a float
// and an absent field.
func testResult() *core.Result {
	l := testLayout()
	store := core.Assemble([]core.Region{{Rows: [][]string{
		{"275kV", "5", "君津線", "1,200", "♯1"},
		{"154kV", "7", "北線", "12.0", "-"},
	}}}, l, nil)

	return &core.Result{
		RunID:     "run-1",
		Layout:    l,
		Store:     store,
		StartedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}
