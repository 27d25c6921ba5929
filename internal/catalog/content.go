package catalog

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"expograb/internal/output"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// Content is the result of a catalog run. It holds plain records, so every
// format can be produced after the page sources are closed.
type Content struct {
	Site    string
	Source  string
	records []output.Record
	stats   Stats
	csv     output.CSVOptions
}

// NewContent wraps records for formatting.
func NewContent(site, source string, records []output.Record, stats Stats, opts output.CSVOptions) *Content {
	return &Content{Site: site, Source: source, records: records, stats: stats, csv: opts}
}

func (c *Content) Records() []output.Record {
	return c.records
}

// Merge puts prev, the records of an earlier run, in front of the current
// ones. Current records win for links present in both.
func (c *Content) Merge(prev []output.Record) {
	c.records = output.Merge(prev, c.records)
}

func (c *Content) ToHTML() (string, error) {
	columns := output.Columns(c.csv.WithE164)

	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, col := range columns {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(col))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, r := range c.records {
		b.WriteString("<tr>")
		for i, cell := range r.Row(c.csv.WithE164) {
			if i == 0 && cell != "" {
				fmt.Fprintf(&b, `<td><a href="%s">%s</a></td>`, html.EscapeString(cell), html.EscapeString(cell))
				continue
			}
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String(), nil
}

func (c *Content) ToMarkdown() (string, error) {
	table, err := c.ToHTML()
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.Table())
	markdown, err := converter.ConvertString(table)
	if err != nil {
		return "", fmt.Errorf("failed to convert table to Markdown: %w", err)
	}
	return markdown + "\n", nil
}

// ToText lists one company per paragraph.
func (c *Content) ToText() (string, error) {
	var b strings.Builder
	for i, r := range c.records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Name)
		fmt.Fprintf(&b, "   %s: %s\n", output.Header[0], r.Link)
		fmt.Fprintf(&b, "   %s: %s\n", output.Header[2], r.Website)
		fmt.Fprintf(&b, "   %s: %s\n", output.Header[3], r.Phone)
		fmt.Fprintf(&b, "   %s: %s\n", output.Header[4], r.Email)
		if c.csv.WithE164 {
			fmt.Fprintf(&b, "   %s: %s\n", output.E164Column, r.PhoneE164)
		}
	}
	return b.String(), nil
}

func (c *Content) ToJSON() ([]byte, error) {
	type jsonOutput struct {
		Site      string          `json:"site"`
		Source    string          `json:"source"`
		Stats     Stats           `json:"stats"`
		Companies []output.Record `json:"companies"`
	}

	records := c.records
	if records == nil {
		records = []output.Record{}
	}
	return json.MarshalIndent(jsonOutput{
		Site:      c.Site,
		Source:    c.Source,
		Stats:     c.stats,
		Companies: records,
	}, "", "  ")
}

// ToCSV renders the semicolon separated export in the configured encoding.
func (c *Content) ToCSV() (string, error) {
	return output.CSVString(c.records, c.csv)
}

func (c *Content) ToXLSX() ([]byte, error) {
	return output.XLSXBytes(c.records, c.csv.WithE164)
}
