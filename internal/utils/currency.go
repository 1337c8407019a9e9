package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var nonDigitPattern = regexp.MustCompile(`\D`)

// FormatCentavos formats an integer amount of centavos as Brazilian currency,
// e.g. 24500000 -> "R$ 245.000,00". Upstream systems encode money as integer
// cents, so the division by 100 here is a deliberate convention.
func FormatCentavos(centavos int64) string {
	negative := centavos < 0
	if negative {
		centavos = -centavos
	}

	reais := centavos / 100
	cents := centavos % 100

	digits := strconv.FormatInt(reais, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents)
}

// FormatMonetaryField normalizes a raw monetary field for display. Values that
// already carry a currency symbol pass through unchanged; anything else is
// treated as an integer number of centavos.
func FormatMonetaryField(raw string, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if strings.Contains(raw, "R$") || strings.Contains(raw, "$") {
		return raw
	}

	digits := nonDigitPattern.ReplaceAllString(raw, "")
	if digits == "" {
		return fallback
	}
	centavos, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return fallback
	}
	if strings.HasPrefix(raw, "-") {
		centavos = -centavos
	}
	return FormatCentavos(centavos)
}
