package utils

import (
	"fmt"
	"strings"
)

// NormalizePhone converts a locally formatted number (leading "0") to
// international format using the configured country code. A number that
// already carries a "+" prefix is kept as-is. Anything else is not a valid
// destination and is rejected.
func NormalizePhone(phone, countryCode string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)

	if cleaned == "" {
		return "", fmt.Errorf("empty phone number")
	}

	if strings.HasPrefix(cleaned, "0") {
		cleaned = countryCode + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "+") {
		return "", fmt.Errorf("phone %q has no recognized international prefix", phone)
	}
	if !ValidatePhone(cleaned) {
		return "", fmt.Errorf("phone %q is not a valid international number", phone)
	}
	return cleaned, nil
}
