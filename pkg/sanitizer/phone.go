package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions tried when parsing a phone number without a country prefix.
// The restaurant and nearly all of its guests are in the DACH region.
var supportedRegions = []string{
	"DE",
	"AT",
	"CH",
}

// NormalizePhone returns the E.164 form of a phone number, or the empty
// string when it cannot be parsed for any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsPossibleNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}
