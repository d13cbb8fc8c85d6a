package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers written without a country code.
const DefaultRegion = "IN"

// NormalizePhone formats a dialable number as E.164. Anything the parser
// cannot read as a valid number comes back trimmed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	num, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return phone
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// IsPhone reports whether phone parses as a valid number.
func IsPhone(phone string) bool {
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), DefaultRegion)
	return err == nil && phonenumbers.IsValidNumber(num)
}
