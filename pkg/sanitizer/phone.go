package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone formats phone as E.164 using region for numbers written
// without a country code. An empty region disables formatting.
func NormalizePhone(phone, region string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" || region == "" {
		return phone
	}

	parsedNumber, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsPossibleNumber(parsedNumber) {
		return phone
	}
	return phonenumbers.Format(parsedNumber, phonenumbers.E164)
}
