package models

import (
	"fmt"
	"strings"
)

// Station represents a single charging point from the Ladesäulenregister, normalized
// from one CSV row. Records are immutable once loaded; a reload replaces the whole set.
type Station struct {
	ID         string  `json:"id"`
	StableKey  string  `json:"stable_key"`
	Operator   string  `json:"operator"`
	Street     string  `json:"street"`
	PostalCode string  `json:"postal_code"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// HasCoordinates reports whether the station carries a real position rather than the
// (0,0) unknown sentinel.
func (s Station) HasCoordinates() bool {
	return s.Latitude != 0 || s.Longitude != 0
}

// ValidatePostalCode checks that code is exactly five ASCII digits.
func ValidatePostalCode(code string) error {
	if len(code) != 5 {
		return fmt.Errorf("%w: %q must be 5 digits", ErrInvalidPostalCode, code)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return fmt.Errorf("%w: %q must be 5 digits", ErrInvalidPostalCode, code)
		}
	}
	return nil
}

// NormalizePostalCode trims raw and left-pads purely numeric codes shorter than five
// digits with zeros ("1067" -> "01067").
func NormalizePostalCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code != "" && len(code) < 5 && strings.Trim(code, "0123456789") == "" {
		code = strings.Repeat("0", 5-len(code)) + code
	}
	if err := ValidatePostalCode(code); err != nil {
		return "", err
	}
	return code, nil
}
