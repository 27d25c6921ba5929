// Package phone adds an E.164 form next to the phone text found on a page.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers written without a country code.
const DefaultRegion = "RU"

// E164 returns raw in E.164 form, or "" when it is not a valid number.
// Only the first number is used when several are listed.
func E164(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ",;/"); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if raw == "" {
		return ""
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
