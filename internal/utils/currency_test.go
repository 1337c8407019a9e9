package utils

import "testing"

func TestFormatCentavos(t *testing.T) {
	tests := []struct {
		name     string
		centavos int64
		want     string
	}{
		{"zero", 0, "R$ 0,00"},
		{"cents only", 99, "R$ 0,99"},
		{"one real", 100, "R$ 1,00"},
		{"thousands separator", 123456, "R$ 1.234,56"},
		{"typical minimum bid", 24500000, "R$ 245.000,00"},
		{"millions", 150000000, "R$ 1.500.000,00"},
		{"negative", -123456, "-R$ 1.234,56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCentavos(tt.centavos); got != tt.want {
				t.Errorf("FormatCentavos(%d) = %q, expected %q", tt.centavos, got, tt.want)
			}
		})
	}
}

func TestFormatMonetaryField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"cents integer", "24500000", "R$ 245.000,00"},
		{"already formatted passes through", "R$ 245.000,00", "R$ 245.000,00"},
		{"dollar symbol passes through", "$ 1,000.00", "$ 1,000.00"},
		{"empty falls back", "", "Não informado"},
		{"non numeric falls back", "abc", "Não informado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMonetaryField(tt.raw, "Não informado"); got != tt.want {
				t.Errorf("FormatMonetaryField(%q) = %q, expected %q", tt.raw, got, tt.want)
			}
		})
	}
}
