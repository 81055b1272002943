package layouts

import "github.com/JonMunkholm/linecap/internal/core"

// TepcoTrunkKey identifies the TEPCO trunk line capacity table.
const TepcoTrunkKey = "tepco-trunk"

func init() {
	registerTepcoTrunk()
}

// registerTepcoTrunk describes the trunk line table of the TEPCO Power Grid
// capacity report (pages 7-9). Column 2 holds the line number and column 3
// the name; transmission lines carry 線 and substations carry 変.
func registerTepcoTrunk() {
	core.RegisterLayout(core.Layout{
		Key:                 TepcoTrunkKey,
		Label:               "TEPCO trunk line capacity",
		MinColumns:          12,
		CompleteColumns:     15,
		CodeColumn:          2,
		LabelColumn:         3,
		RequiredLabelMarker: "線",
		ExcludedLabelMarker: "変",
		Fields: []core.FieldSpec{
			{Name: "line_name", Column: 3},
			{Name: "voltage_kv", Column: 1, Units: []string{"kV", "ｋV"}},
			{Name: "circuits", Column: 5},
			{Name: "equipment_capacity_mw", Column: 6},
			{Name: "operation_capacity_mw", Column: 7},
			{Name: "capacity_constraint", Column: 8},
			{Name: "available_local_mw", Column: 9},
			{Name: "available_upstream_mw", Column: 10},
			{Name: "n1_applicable", Column: 11},
			{Name: "n1_limit_mw", Column: 12},
			{Name: "normal_output_control", Column: 13},
			{Name: "normal_output_control_required", Column: 14},
		},
		Pages:     []int{7, 8, 9},
		TableArea: &core.TableArea{Left: 30, Top: 480, Right: 565, Bottom: 40},
	})
}
