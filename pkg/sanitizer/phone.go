package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats phone as E.164. Numbers without a country code are
// parsed in defaultRegion. Numbers that are not valid are returned trimmed.
func NormalizePhone(phone, defaultRegion string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	parsedNumber, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsedNumber) {
		return phone
	}
	return phonenumbers.Format(parsedNumber, phonenumbers.E164)
}
