package contact

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// sanitizer drops scripts, styles and event handlers so their text never
// reaches the pattern scans. class and id survive for marker selectors.
var sanitizer = newSanitizer()

func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowURLSchemes("mailto", "http", "https", "tel")
	p.AllowElements("address", "header", "footer", "nav", "main", "font", "label")
	return p
}

// Elements rendered as their own line in the plain text.
var lineElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

// Table cells are separated by a space so adjacent cells do not glue together.
var cellElements = map[string]bool{"td": true, "th": true}

// Block is the markup believed to hold one company's contact details,
// together with the plain text derived from it.
type Block struct {
	Markup string
	Text   string

	doc   *goquery.Document
	lines []string
}

// NewBlock sanitizes markup and derives its plain text. Plain text input is
// accepted as is; its line breaks are kept.
func NewBlock(markup string) *Block {
	b := &Block{Markup: markup}
	if strings.TrimSpace(markup) == "" {
		return b
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizer.Sanitize(markup)))
	if err != nil {
		b.Text = normalizeLines(markup)
	} else {
		b.doc = doc
		b.Text = plainText(doc.Nodes...)
	}
	if b.Text != "" {
		b.lines = strings.Split(b.Text, "\n")
	}
	return b
}

// Empty reports whether the block carries nothing to extract from.
func (b *Block) Empty() bool {
	if b == nil {
		return true
	}
	if b.Text != "" {
		return false
	}
	return b.doc == nil || b.doc.Find("a[href]").Length() == 0
}

// Lines returns the non-empty, whitespace-collapsed lines of the plain text.
func (b *Block) Lines() []string {
	if b == nil {
		return nil
	}
	return b.lines
}

// Find runs a CSS selector against the sanitized markup.
func (b *Block) Find(selector string) *goquery.Selection {
	if b == nil || b.doc == nil || selector == "" {
		return nil
	}
	return b.doc.Find(selector)
}

func plainText(roots ...*html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "br" {
				sb.WriteByte('\n')
				return
			}
			if cellElements[n.Data] {
				sb.WriteByte(' ')
			}
		}

		brk := n.Type == html.ElementNode && lineElements[n.Data]
		if brk {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if brk {
			sb.WriteByte('\n')
		}
	}

	for _, root := range roots {
		walk(root)
	}
	return normalizeLines(sb.String())
}

func normalizeLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = collapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
