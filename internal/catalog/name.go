package catalog

import (
	"regexp"
	"strings"
)

var legalForm = regexp.MustCompile(`^(?i)(?:ООО|ОАО|ЗАО|ПАО|НАО|АО|ИП|ГК|ТД|LLC|Ltd\.?)\s+`)

// CleanName collapses whitespace in a company name. With stripLegalForm it
// also drops a leading legal form and the quotes around the rest.
func CleanName(name string, stripLegalForm bool) string {
	name = strings.Join(strings.Fields(name), " ")
	if !stripLegalForm {
		return name
	}

	stripped := legalForm.ReplaceAllString(name, "")
	stripped = strings.Trim(stripped, `«»"„“”' `)
	if stripped == "" {
		return name
	}
	return stripped
}
