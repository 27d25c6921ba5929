package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListSelector describes the company entries of a catalog list page.
type ListSelector struct {
	// Item selects the company anchors, or containers holding one.
	Item string `yaml:"item"`
	// NameAttr names the attribute carrying the company name, e.g. "title".
	// The visible text is used when it is empty or missing.
	NameAttr string `yaml:"name_attr"`
	// Name optionally selects the name element inside an item.
	Name string `yaml:"name"`
	// URLFilter keeps only links containing one of the substrings.
	URLFilter []string `yaml:"url_filter"`
}

// Company is one catalog entry.
type Company struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Companies lists the companies of a list page. Links are resolved against
// pageURL and duplicates are dropped, keeping the first occurrence.
func Companies(markup, pageURL string, sel ListSelector) ([]Company, error) {
	e, err := NewExtractor(markup)
	if err != nil {
		return nil, err
	}
	return e.Companies(pageURL, sel), nil
}

// Companies is Companies on an already parsed page.
func (e *Extractor) Companies(pageURL string, sel ListSelector) []Company {
	base, _ := url.Parse(pageURL)

	var companies []Company
	seen := make(map[string]bool)
	e.doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		anchor := item
		if !item.Is("a[href]") {
			anchor = item.Find("a[href]").First()
		}
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		link := resolve(base, href)
		if !matchesFilter(link, sel.URLFilter) || seen[link] {
			return
		}
		seen[link] = true

		companies = append(companies, Company{
			Name: companyName(item, anchor, sel),
			URL:  link,
		})
	})
	return companies
}

func companyName(item, anchor *goquery.Selection, sel ListSelector) string {
	if sel.NameAttr != "" {
		for _, s := range []*goquery.Selection{anchor, item} {
			if v := collapse(s.AttrOr(sel.NameAttr, "")); v != "" {
				return v
			}
		}
	}
	if sel.Name != "" {
		if v := collapse(item.Find(sel.Name).First().Text()); v != "" {
			return v
		}
	}
	return collapse(item.Text())
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func matchesFilter(link string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.Contains(link, f) {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
