package extractor

import (
	"fmt"
	"strings"

	"expograb/internal/contact"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Extraction levels accepted by Extract.
const (
	LevelFull    = "full"
	LevelHTML    = "html"
	LevelBody    = "body"
	LevelContent = "content"
	LevelXPath   = "xpath"
	LevelCSS     = "css"
)

// Selectors probed by the content level, in order.
var contentSelectors = []string{"article", "main", ".content", ".article", ".post", ".entry-content"}

// Extractor cuts pieces out of a fetched page.
type Extractor struct {
	markup string
	doc    *goquery.Document
}

// NewExtractor parses markup into a new Extractor instance
func NewExtractor(markup string) (*Extractor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Extractor{markup: markup, doc: doc}, nil
}

// Extract extracts content based on level
// level: extraction level (full/html/body/content/xpath/css)
// selector: selector (only for xpath and css levels)
func (e *Extractor) Extract(level, selector string) (string, error) {
	switch level {
	case LevelFull:
		return e.extractFull(), nil
	case LevelHTML:
		return e.extractHTML()
	case LevelBody:
		return e.extractBody(), nil
	case LevelContent:
		return e.extractContent()
	case LevelXPath:
		return e.extractByXPath(selector)
	case LevelCSS:
		return e.extractByCSS(selector)
	default:
		return "", fmt.Errorf("unsupported level: %s", level)
	}
}

// Title returns the page title.
func (e *Extractor) Title() string {
	return strings.TrimSpace(e.doc.Find("title").First().Text())
}

func (e *Extractor) extractFull() string {
	if strings.Contains(strings.ToLower(e.markup), "<!doctype") {
		return e.markup
	}
	return "<!DOCTYPE html>\n" + e.markup
}

func (e *Extractor) extractHTML() (string, error) {
	body := e.doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}
	h, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to extract body HTML: %w", err)
	}
	return h, nil
}

// extractBody returns the body text with one line per block element
func (e *Extractor) extractBody() string {
	h, err := e.extractHTML()
	if err != nil || h == "" {
		return ""
	}
	return contact.NewBlock(h).Text
}

// extractContent picks the main content container, falling back to the body
func (e *Extractor) extractContent() (string, error) {
	for _, sel := range contentSelectors {
		node := e.doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		h, err := goquery.OuterHtml(node)
		if err == nil && strings.TrimSpace(h) != "" {
			return h, nil
		}
	}

	h, err := e.extractHTML()
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}
	return h, nil
}

// extractByXPath extracts content using XPath selector
func (e *Extractor) extractByXPath(expr string) (string, error) {
	root, err := htmlquery.Parse(strings.NewReader(e.markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(root, expr)
	if err != nil {
		return "", fmt.Errorf("failed to query XPath: %w", err)
	}

	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			continue
		}
		parts = append(parts, htmlquery.OutputHTML(n, true))
	}
	return strings.Join(parts, "\n"), nil
}

// extractByCSS extracts content using CSS selector
func (e *Extractor) extractByCSS(selector string) (string, error) {
	var parts []string
	var err error
	e.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var h string
		h, err = goquery.OuterHtml(s)
		if err != nil {
			return false
		}
		parts = append(parts, h)
		return true
	})
	if err != nil {
		return "", fmt.Errorf("failed to get element HTML: %w", err)
	}
	return strings.Join(parts, "\n"), nil
}
