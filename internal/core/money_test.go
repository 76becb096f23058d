package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer", input: "100", want: 10000},
		{name: "single decimal", input: "5.5", want: 550},
		{name: "third decimal rounds down", input: "12.344", want: 1234},
		{name: "third decimal rounds up", input: "12.346", want: 1235},
		{name: "leading dot", input: ".50", want: 50},
		{name: "whitespace trimmed", input: " 42.00 ", want: 4200},
		{name: "empty", input: "", wantErr: true},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "negative rejected", input: "-5", wantErr: true},
		{name: "explicit plus rejected", input: "+5", wantErr: true},
		{name: "letters rejected", input: "12a.34", wantErr: true},
		{name: "two dots rejected", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_Decimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{0, "0.00"},
		{5, "0.05"},
		{-2000, "-20.00"},
		{100000, "1000.00"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Decimal(); got != tt.want {
			t.Errorf("Money{%d}.Decimal() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_Rounded(t *testing.T) {
	tests := []struct {
		cents int64
		want  int64
	}{
		{1234, 12},
		{1250, 13},
		{1249, 12},
		{-1250, -13},
		{0, 0},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).Rounded(); got != tt.want {
			t.Errorf("Money{%d}.Rounded() = %d, want %d", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		wire  string
	}{
		{"positive", 1234, "12.34"},
		{"zero balance", 0, "0.00"},
		{"negative net", -2550, "-25.50"},
		{"sub-rupee", 5, "0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Money{Cents: tt.cents}
			data, err := m.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON: %v", err)
			}
			if string(data) != tt.wire {
				t.Fatalf("MarshalJSON = %s, want %s", data, tt.wire)
			}

			var back Money
			if err := back.UnmarshalJSON(data); err != nil {
				t.Fatalf("UnmarshalJSON(%s): %v", data, err)
			}
			if back != m {
				t.Errorf("round trip = %d cents, want %d", back.Cents, m.Cents)
			}
		})
	}
}

func TestMoney_UnmarshalJSONRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "--5"} {
		var m Money
		if err := m.UnmarshalJSON([]byte(input)); err == nil {
			t.Errorf("UnmarshalJSON(%q) accepted invalid input", input)
		}
	}
}
