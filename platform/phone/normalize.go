// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to parse numbers written without a country prefix.
const DefaultRegion = "US"

func parse(input string) (*phonenumbers.PhoneNumber, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}

	number, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return nil, false
	}
	return number, true
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	number, ok := parse(input)
	if !ok {
		return strings.TrimSpace(input)
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// RegionCode returns the ISO-3166 alpha-2 region of a valid number, or "" when unknown.
func RegionCode(input string) string {
	number, ok := parse(input)
	if !ok {
		return ""
	}
	return phonenumbers.GetRegionCodeForNumber(number)
}
