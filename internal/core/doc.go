// Package core turns extracted table regions into keyed, typed records.
//
// The package knows nothing about PDFs, spreadsheets or HTTP. It receives
// regions (grids of raw cell text) from a [RegionSource] and produces a
// [Store] of [Record] values. It can be used by the web server, the CLI, or
// tests without modification.
//
// # Architecture
//
//   - Layouts: a [Layout] fixes which columns hold the code, the label and
//     each output field for one document family. Built-in layouts are
//     registered with [RegisterLayout]; others load from YAML via
//     [LoadLayoutFile].
//   - Normalization: [Normalize] turns a raw cell into a [Value] that is
//     absent, an integer, a float or text.
//   - Classification: [Layout.Classify] decides whether a row is a data row
//     and reports a [RejectReason] when it is not.
//   - Assembly: an [Assembler] walks regions in order and keeps one record
//     per key. A later row with the same key replaces the earlier record.
//   - Service: [Service.Run] drives a source through an assembler and keeps
//     the partial result when the source fails part way.
//
// # Registering a Layout
//
//	core.RegisterLayout(core.Layout{
//	    Key:                 "tepco-trunk",
//	    MinColumns:          12,
//	    CompleteColumns:     15,
//	    CodeColumn:          2,
//	    LabelColumn:         3,
//	    RequiredLabelMarker: "線",
//	    ExcludedLabelMarker: "変",
//	    Fields: []core.FieldSpec{
//	        {Name: "line_name", Column: 3},
//	        {Name: "voltage_kv", Column: 1, Units: []string{"kV", "ｋV"}},
//	    },
//	})
//
// # Output
//
// A Store marshals to a JSON object whose members appear in first-seen key
// order. Absent values encode as null and floats always carry a fractional
// part, so 12 and 12.0 stay distinguishable downstream.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each category has a code for support reference:
//
//   - EXT001-EXT003: Extraction errors (source failures, formats, pages)
//   - LAY001-LAY002: Layout errors (unknown key, invalid definition)
//   - SNK001: Output errors
//   - RUN001-RUN003: Run errors (busy, cancelled, timed out)
//   - FILE001-FILE003: Upload file errors
//   - REQ001: Invalid request parameters
package core
