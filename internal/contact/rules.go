package contact

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// DefaultScheme is prepended to accepted websites that carry no scheme.
const DefaultScheme = "https://"

// Rules disqualify website candidates. Entries are case-insensitive:
//   - pseudo-protocols such as "tel:" match anywhere in the candidate
//   - domains such as "vk.com" match the host and its subdomains
//   - fragments with a leading or trailing dot, or no dot at all, such as
//     "catalog.", match anywhere in the host
type Rules struct {
	Excluded      []string
	DefaultScheme string
}

// DefaultRules excludes pseudo-protocols and social networks. Callers add the
// catalog's own domain with With.
func DefaultRules() Rules {
	return Rules{
		Excluded: []string{
			"mailto:", "tel:", "javascript:",
			"facebook.com", "vk.com", "twitter.com", "instagram.com",
			"linkedin.com", "youtube.com", "t.me", "ok.ru", "wa.me",
		},
		DefaultScheme: DefaultScheme,
	}
}

// With returns a copy of r that also excludes extra.
func (r Rules) With(extra ...string) Rules {
	out := Rules{
		Excluded:      make([]string, 0, len(r.Excluded)+len(extra)),
		DefaultScheme: r.DefaultScheme,
	}
	out.Excluded = append(out.Excluded, r.Excluded...)
	for _, e := range extra {
		if e = strings.TrimSpace(e); e != "" {
			out.Excluded = append(out.Excluded, e)
		}
	}
	return out
}

// Excludes reports whether the website candidate s is disqualified.
func (r Rules) Excludes(s string) bool {
	s = strings.ToLower(s)
	host := hostOf(s)
	for _, e := range r.Excluded {
		e = strings.ToLower(strings.TrimSpace(e))
		switch {
		case e == "":
		case strings.Contains(e, ":"):
			if strings.Contains(s, e) {
				return true
			}
		case strings.HasPrefix(e, ".") || strings.HasSuffix(e, ".") || !strings.Contains(e, "."):
			if strings.Contains(host, e) {
				return true
			}
		default:
			if host == e || strings.HasSuffix(host, "."+e) {
				return true
			}
		}
	}
	return false
}

// NormalizeWebsite cleans a website candidate and decides whether to accept
// it. email is the address already found for the same company, if any; a
// candidate equal to its domain is rejected. Accepted values are stable:
// feeding the result back returns it unchanged.
func NormalizeWebsite(raw string, rules Rules, email string) (string, bool) {
	site := trimPunct(raw)
	if i := strings.IndexAny(site, "?#"); i >= 0 {
		site = trimPunct(site[:i])
	}
	if len(site) <= 4 || !strings.Contains(site, ".") {
		return "", false
	}
	if rules.Excludes(site) {
		return "", false
	}
	if domain := emailDomain(email); domain != "" && sameDomain(stripScheme(site), domain) {
		return "", false
	}

	if !hasScheme(site) {
		scheme := rules.DefaultScheme
		if scheme == "" {
			scheme = DefaultScheme
		}
		site = scheme + site
	}
	return site, true
}

// NormalizePhone collapses whitespace runs. Separators are kept verbatim.
func NormalizePhone(raw string) (string, bool) {
	p := collapseSpace(raw)
	return p, p != ""
}

// NormalizeEmail accepts a pattern match or a mailto target. A mailto
// target loses its scheme and any ?subject= style query.
func NormalizeEmail(raw string) (string, bool) {
	e := strings.TrimSpace(raw)
	if len(e) >= len("mailto:") && strings.EqualFold(e[:len("mailto:")], "mailto:") {
		e = e[len("mailto:"):]
		if i := strings.IndexByte(e, '?'); i >= 0 {
			e = e[:i]
		}
		if u, err := url.PathUnescape(e); err == nil {
			e = u
		}
		e = strings.TrimSpace(e)
	}
	if e == "" || !strings.Contains(e, "@") {
		return "", false
	}
	return e, true
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasScheme(s string) bool {
	return strings.Contains(s, "://")
}

func stripScheme(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		return s[i+3:]
	}
	return s
}

// hostOf returns the lowercased host of a website candidate with or
// without a scheme.
func hostOf(s string) string {
	h := stripScheme(strings.ToLower(s))
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}
	if i := strings.LastIndexByte(h, '@'); i >= 0 {
		h = h[i+1:]
	}
	if i := strings.IndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	return strings.TrimSuffix(h, ".")
}

func emailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(email[i+1:])
}

// sameDomain compares a cleaned site with an email domain, treating the
// punycode and Unicode spellings of a domain as equal.
func sameDomain(site, domain string) bool {
	return strings.EqualFold(unicodeDomain(site), unicodeDomain(domain))
}

func unicodeDomain(s string) string {
	s = strings.ToLower(s)
	if u, err := idna.ToUnicode(s); err == nil {
		return u
	}
	return s
}
