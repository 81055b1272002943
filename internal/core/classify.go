package core

// classify.go decides which extracted rows are genuine data records.
//
// Classification only looks at two short columns, the identifying code and
// the entity label. Table extraction from rendered pages often shifts or
// garbles the numeric columns but rarely damages a short label, so the
// remaining cells are never consulted.

import "strings"

// RejectReason explains why a row was not accepted.
type RejectReason uint8

const (
	Accepted RejectReason = iota
	RejectShortRow
	RejectCodeMissing
	RejectCodeNotInteger
	RejectLabelMissing
	RejectLabelUnmarked
	RejectLabelExcluded
	RejectIncomplete // accepted by the classifier but narrower than CompleteColumns
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectShortRow:
		return "short_row"
	case RejectCodeMissing:
		return "code_missing"
	case RejectCodeNotInteger:
		return "code_not_integer"
	case RejectLabelMissing:
		return "label_missing"
	case RejectLabelUnmarked:
		return "label_unmarked"
	case RejectLabelExcluded:
		return "label_excluded"
	case RejectIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of classifying one row.
type Verdict struct {
	Reason RejectReason
	Code   string // Cleaned code cell, set when the row got that far
	Label  string // Cleaned label cell, set when the row got that far
}

// Accepted reports whether the row is a data row.
func (v Verdict) Accepted() bool { return v.Reason == Accepted }

// Classify inspects the code and label cells of row.
func (l Layout) Classify(row []string) Verdict {
	if len(row) < l.MinColumns || len(row) <= l.CodeColumn || len(row) <= l.LabelColumn {
		return Verdict{Reason: RejectShortRow}
	}

	code := CleanCell(row[l.CodeColumn])
	if code == "" {
		return Verdict{Reason: RejectCodeMissing}
	}
	if _, ok := parseInt(code); !ok {
		return Verdict{Reason: RejectCodeNotInteger, Code: code}
	}

	label := CleanCell(row[l.LabelColumn])
	if label == "" {
		return Verdict{Reason: RejectLabelMissing, Code: code}
	}
	if !strings.Contains(label, l.RequiredLabelMarker) {
		return Verdict{Reason: RejectLabelUnmarked, Code: code, Label: label}
	}
	if l.ExcludedLabelMarker != "" && strings.Contains(label, l.ExcludedLabelMarker) {
		return Verdict{Reason: RejectLabelExcluded, Code: code, Label: label}
	}

	return Verdict{Reason: Accepted, Code: code, Label: label}
}

// IsDataRow reports whether row is a genuine data record for this layout.
func (l Layout) IsDataRow(row []string) bool {
	return l.Classify(row).Accepted()
}
