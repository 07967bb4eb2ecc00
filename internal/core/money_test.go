package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmountToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "1500", 150000, false},
		{"two decimals", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"one decimal", "9.5", 950, false},
		{"rounds half up", "0.005", 1, false},
		{"surrounding whitespace", " 42 ", 4200, false},
		{"zero", "0", 0, true},
		{"rounds down to zero", "0.004", 0, true},
		{"negative", "-5", 0, true},
		{"explicit plus sign", "+5", 0, true},
		{"empty", "", 0, true},
		{"garbage", "abc", 0, true},
		{"double separator", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmountToCents(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseAmountToCents(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmountToCents(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmountToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{150000, "1500.00"},
		{1234, "12.34"},
		{5, "0.05"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshals as number", func(t *testing.T) {
		b, err := json.Marshal(Money{Cents: 1234})
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(b) != "12.34" {
			t.Errorf("Marshal() = %s, want 12.34", b)
		}
	})

	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"number", "12.34", 1234},
		{"integer number", "1500", 150000},
		{"quoted string", `"12.34"`, 1234},
		{"null", "null", 0},
	}

	for _, tt := range tests {
		t.Run("unmarshal "+tt.name, func(t *testing.T) {
			var m Money
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if m.Cents != tt.want {
				t.Errorf("Unmarshal(%s) cents = %d, want %d", tt.raw, m.Cents, tt.want)
			}
		})
	}
}
