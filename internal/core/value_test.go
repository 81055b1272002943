package core

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		want     any
	}{
		{name: "empty is absent", raw: "", wantKind: KindAbsent, want: nil},
		{name: "whitespace is absent", raw: "  \t ", wantKind: KindAbsent, want: nil},
		{name: "dash is absent", raw: "-", wantKind: KindAbsent, want: nil},
		{name: "padded dash is absent", raw: " - ", wantKind: KindAbsent, want: nil},
		{name: "only commas is absent", raw: ",,", wantKind: KindAbsent, want: nil},
		{name: "comma dash is absent", raw: "-,", wantKind: KindAbsent, want: nil},
		{name: "integer", raw: "42", wantKind: KindInt, want: int64(42)},
		{name: "negative integer", raw: "-7", wantKind: KindInt, want: int64(-7)},
		{name: "thousands separator", raw: "1,234", wantKind: KindInt, want: int64(1234)},
		{name: "wrapped integer", raw: "1,2\n34", wantKind: KindInt, want: int64(1234)},
		{name: "full-width digits", raw: "１２３", wantKind: KindInt, want: int64(123)},
		{name: "float", raw: "12.5", wantKind: KindFloat, want: 12.5},
		{name: "float with separator", raw: "1,234.5", wantKind: KindFloat, want: 1234.5},
		{name: "integral float", raw: "100.0", wantKind: KindFloat, want: 100.0},
		{name: "int64 overflow falls to float", raw: "9223372036854775808", wantKind: KindFloat, want: 9223372036854775808.0},
		{name: "nan stays text", raw: "NaN", wantKind: KindString, want: "NaN"},
		{name: "inf stays text", raw: "inf", wantKind: KindString, want: "inf"},
		{name: "text", raw: "有", wantKind: KindString, want: "有"},
		{name: "text with line break", raw: " 熱容\n量 ", wantKind: KindString, want: "熱容量"},
		{name: "text loses commas", raw: "A,B", wantKind: KindString, want: "AB"},
		{name: "space before trailing comma", raw: "5 ,", wantKind: KindInt, want: int64(5)},
		{name: "text before trailing comma", raw: "a ,", wantKind: KindString, want: "a"},
		{name: "space comma dash is absent", raw: " , -", wantKind: KindAbsent, want: nil},
		{name: "digit underscores", raw: "1_000", wantKind: KindInt, want: int64(1000)},
		{name: "float underscores", raw: "1_000.5", wantKind: KindFloat, want: 1000.5},
		{name: "leading underscore stays text", raw: "_1000", wantKind: KindString, want: "_1000"},
		{name: "double underscore stays text", raw: "1__000", wantKind: KindString, want: "1__000"},
		{name: "hex float stays text", raw: "0x1p4", wantKind: KindString, want: "0x1p4"},
		{name: "hex int stays text", raw: "0x10", wantKind: KindString, want: "0x10"},
		{name: "exponent", raw: "1e3", wantKind: KindFloat, want: 1000.0},
		{name: "bare fraction", raw: ".5", wantKind: KindFloat, want: 0.5},
		{name: "trailing point", raw: "5.", wantKind: KindFloat, want: 5.0},
		{name: "plus sign", raw: "+8", wantKind: KindInt, want: int64(8)},
		{name: "lone point stays text", raw: ".", wantKind: KindString, want: "."},
		{name: "inner space stays text", raw: "5 0", wantKind: KindString, want: "5 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.Kind() != tt.wantKind {
				t.Fatalf("Normalize(%q) kind = %v, want %v", tt.raw, got.Kind(), tt.wantKind)
			}
			if got.Any() != tt.want {
				t.Errorf("Normalize(%q) = %#v, want %#v", tt.raw, got.Any(), tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", "-", "42", "1,234", "12.5", "有", "A,B", "１２３", "  7 ", "1e3",
		"5 ,", "a ,", "1_000", "0x1p4", "1__000", ".5", "9223372036854775808",
	}

	for _, raw := range inputs {
		first := Normalize(raw)
		second := Normalize(first.String())
		if first.Kind() != second.Kind() || first.Any() != second.Any() {
			t.Errorf("Normalize(Normalize(%q)) = %#v, want %#v", raw, second.Any(), first.Any())
		}
	}
}

func TestNormalizeWithUnits(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"275kV", int64(275)},
		{"１５４ｋV", int64(154)},
		{"66 kV", int64(66)},
		{"kV", nil},
		{"-", nil},
	}

	for _, tt := range tests {
		got := NormalizeWithUnits(tt.raw, []string{"kV", "ｋV"})
		if got.Any() != tt.want {
			t.Errorf("NormalizeWithUnits(%q) = %#v, want %#v", tt.raw, got.Any(), tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  abc  ", "abc"},
		{"a\nb", "ab"},
		{"a\r\nb", "ab"},
		{"\n", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"absent", AbsentValue(), "null"},
		{"int", IntValue(1200), "1200"},
		{"integral float", FloatValue(100), "100.0"},
		{"float", FloatValue(0.25), "0.25"},
		{"text", TextValue("有"), `"有"`},
		{"no html escaping", TextValue("<A&B>"), `"<A&B>"`},
		{"empty text is absent", TextValue(""), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.v.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestValueAccessors(t *testing.T) {
	v := IntValue(5)
	if _, ok := v.Float(); ok {
		t.Error("Float() ok on int value")
	}
	if i, ok := v.Int(); !ok || i != 5 {
		t.Errorf("Int() = %d, %v, want 5, true", i, ok)
	}
	if AbsentValue().String() != "" {
		t.Errorf("absent String() = %q, want empty", AbsentValue().String())
	}
	if KindFloat.String() != "float" {
		t.Errorf("KindFloat.String() = %q, want float", KindFloat.String())
	}
}
