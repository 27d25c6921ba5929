package contact

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy yields raw candidates for one field, in document order. The
// extractor post-processes them and keeps the first one accepted.
type Strategy interface {
	Name() string
	Candidates(b *Block, f Field) []string
}

// Markers are CSS selectors of the sub-elements conventionally holding
// each field, such as ".company_site" or ".company_email".
type Markers struct {
	Website string `yaml:"website"`
	Phone   string `yaml:"phone"`
	Email   string `yaml:"email"`
}

func (m Markers) of(f Field) string {
	switch f {
	case Website:
		return m.Website
	case Phone:
		return m.Phone
	case Email:
		return m.Email
	}
	return ""
}

// markerLinks reads link targets inside marker elements: http(s) hrefs for
// the website, mailto for the email, tel for the phone.
type markerLinks struct {
	markers  Markers
	patterns Patterns
}

func (s markerLinks) Name() string { return "marker-link" }

func (s markerLinks) Candidates(b *Block, f Field) []string {
	sel := b.Find(s.markers.of(f))
	if sel == nil {
		return nil
	}

	var out []string
	sel.Each(func(_ int, m *goquery.Selection) {
		for _, href := range hrefs(m) {
			switch f {
			case Website:
				if isWebLink(href) {
					out = append(out, href)
				}
			case Email:
				if hasPrefixFold(href, "mailto:") {
					out = append(out, href)
				}
			case Phone:
				if hasPrefixFold(href, "tel:") {
					target := href[len("tel:"):]
					if u, err := url.PathUnescape(target); err == nil {
						target = u
					}
					out = append(out, s.patterns.matches(Phone, target)...)
				}
			}
		}
	})
	return out
}

// blockMailto takes mailto targets from anywhere in the block. It only
// serves the email field.
type blockMailto struct{}

func (blockMailto) Name() string { return "mailto" }

func (blockMailto) Candidates(b *Block, f Field) []string {
	if f != Email {
		return nil
	}
	sel := b.Find("a[href]")
	if sel == nil {
		return nil
	}

	var out []string
	sel.Each(func(_ int, a *goquery.Selection) {
		if href := strings.TrimSpace(a.AttrOr("href", "")); hasPrefixFold(href, "mailto:") {
			out = append(out, href)
		}
	})
	return out
}

// markerText applies the field pattern to the visible text of marker
// elements.
type markerText struct {
	markers  Markers
	patterns Patterns
}

func (s markerText) Name() string { return "marker-text" }

func (s markerText) Candidates(b *Block, f Field) []string {
	sel := b.Find(s.markers.of(f))
	if sel == nil {
		return nil
	}

	var out []string
	sel.Each(func(_ int, m *goquery.Selection) {
		out = append(out, s.patterns.matches(f, plainText(m.Nodes...))...)
	})
	return out
}

// labeledLines looks for lines announcing the field with a label and
// applies the field pattern to the text after the label.
type labeledLines struct {
	labels   map[Field]*regexp.Regexp
	patterns Patterns
}

func newLabeledLines(labels Labels, patterns Patterns) labeledLines {
	return labeledLines{
		labels: map[Field]*regexp.Regexp{
			Website: labelRegexp(labels.of(Website)),
			Phone:   labelRegexp(labels.of(Phone)),
			Email:   labelRegexp(labels.of(Email)),
		},
		patterns: patterns,
	}
}

func (s labeledLines) Name() string { return "labeled-line" }

func (s labeledLines) Candidates(b *Block, f Field) []string {
	re := s.labels[f]
	if re == nil {
		return nil
	}

	var out []string
	for _, line := range b.Lines() {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		out = append(out, s.patterns.matches(f, line[loc[1]:])...)
	}
	return out
}

// fullScan applies the field pattern to the whole plain text.
type fullScan struct {
	patterns Patterns
}

func (fullScan) Name() string { return "scan" }

func (s fullScan) Candidates(b *Block, f Field) []string {
	return s.patterns.matches(f, b.Text)
}

// hrefs returns the link targets of m itself and of its descendant anchors.
func hrefs(m *goquery.Selection) []string {
	var out []string
	m.Filter("a[href]").AddSelection(m.Find("a[href]")).Each(func(_ int, a *goquery.Selection) {
		if href := strings.TrimSpace(a.AttrOr("href", "")); href != "" {
			out = append(out, href)
		}
	})
	return out
}

func isWebLink(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
