package core

// value.go turns a single raw table cell into a typed scalar.
//
// Cells coming out of rendered reports are messy:
//   - Wrapped text arrives with literal line breaks inside the cell
//   - Missing values are printed as a lone dash
//   - Numbers carry thousands separators and sometimes full-width digits
//   - Footnote markers ("♯1") sit in otherwise numeric columns
//
// Normalize never fails. Anything that is not a number survives verbatim as
// text so annotation markers are not lost.

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Kind tags which variant a Value holds.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// NoDataSentinel is the cell text reports use for "no value".
const NoDataSentinel = "-"

// Value is the normalized form of one cell: absent, an integer, a float, or a
// non-empty string. The zero Value is absent.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// AbsentValue returns the "no value" Value.
func AbsentValue() Value { return Value{} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// TextValue wraps a string. An empty string yields an absent Value.
func TextValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindString, s: s}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v holds no value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Int returns the integer and true if v is an integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float and true if v is a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Text returns the string and true if v is a string.
func (v Value) Text() (string, bool) { return v.s, v.kind == KindString }

// Any returns v as a plain Go value: nil, int64, float64 or string.
// Sinks that hand values to drivers (pgx, Firestore, excelize) use this.
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String renders v for logs and previews. Absent renders as an empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// MarshalJSON encodes absent as null. Floats always keep a decimal point so a
// reader can tell 100.0 from 100.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		return []byte(formatFloat(v.f)), nil
	case KindString:
		return marshalString(v.s)
	default:
		return []byte("null"), nil
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Normalize converts one raw cell into a Value.
//
// Steps, in order: trim whitespace and drop embedded line breaks; empty or
// "-" is absent; strip thousands separators and trim again; try an integer,
// then a float; otherwise keep the text.
func Normalize(raw string) Value {
	s := CleanCell(raw)
	if s == "" || s == NoDataSentinel {
		return AbsentValue()
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == NoDataSentinel {
		return AbsentValue()
	}

	if v, ok := parseNumber(s); ok {
		return v
	}
	return TextValue(s)
}

// NormalizeWithUnits strips unit suffixes such as "kV" before normalizing.
// Units are removed wherever they appear, matching how the printed tables
// attach them to the number.
func NormalizeWithUnits(raw string, units []string) Value {
	if len(units) == 0 {
		return Normalize(raw)
	}
	s := CleanCell(raw)
	for _, u := range units {
		if u != "" {
			s = strings.ReplaceAll(s, u, "")
		}
	}
	return Normalize(s)
}

// CleanCell trims surrounding whitespace and removes line breaks that come
// from wrapped cell text.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "\r\n") {
		s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	}
	return s
}

// parseNumber accepts plain decimal numerals only: an optional sign, digits
// with an optional fraction and exponent. Single underscores between digits
// are dropped. Hex, binary and octal forms stay text. Full-width digits are
// folded first; typeset Japanese reports use them freely.
//
// Integers that overflow int64 fall back to float. NaN and infinities are
// rejected; they cannot be serialized and never appear as real measurements.
func parseNumber(s string) (Value, bool) {
	lit, integral, ok := decimalLiteral(width.Narrow.String(s))
	if !ok {
		return Value{}, false
	}
	if integral {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return IntValue(i), true
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	return FloatValue(f), true
}

// decimalLiteral validates s and returns it with underscores removed.
// integral is false when s has a fraction or an exponent.
func decimalLiteral(s string) (lit string, integral, ok bool) {
	var b strings.Builder
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		b.WriteByte(s[i])
		i++
	}

	whole, i, ok := digitRun(s, i, &b)
	if !ok {
		return "", false, false
	}
	integral = true

	frac := 0
	if i < len(s) && s[i] == '.' {
		integral = false
		b.WriteByte('.')
		if frac, i, ok = digitRun(s, i+1, &b); !ok {
			return "", false, false
		}
	}
	if whole+frac == 0 {
		return "", false, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		integral = false
		b.WriteByte('e')
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			b.WriteByte(s[i])
			i++
		}
		var exp int
		if exp, i, ok = digitRun(s, i, &b); !ok || exp == 0 {
			return "", false, false
		}
	}

	if i != len(s) {
		return "", false, false
	}
	return b.String(), integral, true
}

// digitRun copies the ASCII digits of s starting at i into b and returns how
// many it copied and where it stopped. An underscore must sit between two
// digits.
func digitRun(s string, i int, b *strings.Builder) (n, next int, ok bool) {
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
			n++
			i++
		case c == '_':
			if n == 0 || i+1 >= len(s) || s[i+1] < '0' || s[i+1] > '9' {
				return n, i, false
			}
			i++
		default:
			return n, i, true
		}
	}
	return n, i, true
}

func parseInt(s string) (int64, bool) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, false
	}
	return v.Int()
}

// parseFloat accepts any decimal numeral, integral or not.
func parseFloat(s string) (float64, bool) {
	v, ok := parseNumber(s)
	if !ok {
		return 0, false
	}
	if i, isInt := v.Int(); isInt {
		return float64(i), true
	}
	return v.Float()
}
