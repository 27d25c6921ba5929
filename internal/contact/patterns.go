package contact

import (
	"regexp"
	"sort"
	"strings"
)

// Field identifies one of the three extracted contact fields.
type Field int

const (
	Website Field = iota
	Phone
	Email
)

func (f Field) String() string {
	switch f {
	case Website:
		return "website"
	case Phone:
		return "phone"
	case Email:
		return "email"
	default:
		return "unknown"
	}
}

const (
	emailPattern = `[a-zA-Z0-9._%+-]+@[\p{L}\p{N}.-]+\.\p{L}{2,}`

	// Russian, Belarusian, Turkish, Ukrainian and Polish country prefixes,
	// followed by the loosely grouped digit runs catalogs print.
	phonePattern = `(?:\+?[78]|\+\s?375|\+\s?90|\+\s?380|\+\s?48)[\s(-]*(?:\d{2,4}[\s)-]*){2,4}[\s-]*\d{2,3}[\s-]*\d{2,4}(?:/\d{2,4})?`

	// The leading class stands in for a Unicode word boundary; the address
	// itself is capture group 1.
	urlPattern = `(?i)(?:^|[^\p{L}\p{N}@._/-])((?:https?://)?(?:www\.)?[\p{L}\p{N}-]+(?:\.[\p{L}\p{N}-]+)*\.\p{L}{2,}(?:[/?#][^\s<>"']*)?)`
)

// Patterns holds the recognition pattern of each field. The URL pattern must
// report the address in its first capture group.
type Patterns struct {
	Email *regexp.Regexp
	Phone *regexp.Regexp
	URL   *regexp.Regexp
}

// DefaultPatterns returns the Unicode-aware patterns used by catalog pages,
// including Cyrillic domains.
func DefaultPatterns() Patterns {
	return Patterns{
		Email: regexp.MustCompile(emailPattern),
		Phone: regexp.MustCompile(phonePattern),
		URL:   regexp.MustCompile(urlPattern),
	}
}

// matches returns every match of the field pattern in s, in order.
func (p Patterns) matches(f Field, s string) []string {
	switch f {
	case Email:
		if p.Email == nil {
			return nil
		}
		return p.Email.FindAllString(s, -1)
	case Phone:
		if p.Phone == nil {
			return nil
		}
		return p.Phone.FindAllString(s, -1)
	case Website:
		if p.URL == nil {
			return nil
		}
		var out []string
		for _, m := range p.URL.FindAllStringSubmatchIndex(s, -1) {
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			// user.name@firm.ru is an address, not a site
			if m[3] < len(s) && s[m[3]] == '@' {
				continue
			}
			out = append(out, s[m[2]:m[3]])
		}
		return out
	}
	return nil
}

// Labels lists the label synonyms announcing each field on a text line.
type Labels struct {
	Website []string
	Phone   []string
	Email   []string
}

// DefaultLabels returns the label spellings seen across catalog pages.
func DefaultLabels() Labels {
	return Labels{
		Website: []string{"Сайт", "Веб-сайт", "Вебсайт", "Website", "Web-site", "Site", "Web"},
		Phone:   []string{"Телефон", "Тел.", "Тел", "Моб.", "Phone", "Tel.", "Tel"},
		Email:   []string{"E-mail", "Email", "Эл. почта", "Электронная почта", "Почта", "Mail"},
	}
}

func (l Labels) of(f Field) []string {
	switch f {
	case Website:
		return l.Website
	case Phone:
		return l.Phone
	case Email:
		return l.Email
	}
	return nil
}

// labelRegexp compiles the synonyms into one case-insensitive alternation
// that only matches whole words, so "webstore.ru" carries no "Web" label.
// Longer synonyms come first so "Телефон" is not cut short at "Тел".
func labelRegexp(labels []string) *regexp.Regexp {
	if len(labels) == 0 {
		return nil
	}

	sorted := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			sorted = append(sorted, regexp.QuoteMeta(l))
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(sorted, "|") + `)(?:$|[^\p{L}\p{N}])`)
}
