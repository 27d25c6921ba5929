package generic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"expograb/internal/output"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// PageContent holds the contacts of one page and the page excerpt at the
// requested level, all as plain strings.
type PageContent struct {
	record      output.Record
	htmlContent string // body innerHTML, or the level excerpt
	textContent string // line based text when level=body, else the excerpt HTML
	level       string
	loadTime    time.Duration
	csv         output.CSVOptions
}

// Record returns the extracted contacts.
func (p *PageContent) Record() output.Record {
	return p.record
}

// ToHTML returns HTML format content
func (p *PageContent) ToHTML() (string, error) {
	return p.htmlContent, nil
}

// ToText returns the contacts followed by the page text.
func (p *PageContent) ToText() (string, error) {
	text := p.textContent
	if p.level != "body" {
		converter := md.NewConverter("", true, nil)
		var err error
		text, err = converter.ConvertString(p.textContent)
		if err != nil {
			return "", fmt.Errorf("failed to convert HTML to text: %w", err)
		}
	}
	return p.summary("") + "\n" + text, nil
}

// ToMarkdown returns Markdown format content
func (p *PageContent) ToMarkdown() (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.Table())
	markdown, err := converter.ConvertString(p.htmlContent)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return p.summary("- ") + "\n---\n\n" + markdown, nil
}

// ToJSON returns JSON format content
func (p *PageContent) ToJSON() ([]byte, error) {
	text, err := p.ToText()
	if err != nil {
		return nil, fmt.Errorf("failed to get page text: %w", err)
	}

	markdown, err := p.ToMarkdown()
	if err != nil {
		return nil, fmt.Errorf("failed to get page markdown: %w", err)
	}

	type jsonOutput struct {
		Contacts output.Record `json:"contacts"`
		HTML     string        `json:"html"`
		Text     string        `json:"text"`
		Markdown string        `json:"markdown"`
		Title    string        `json:"title"`
		URL      string        `json:"url"`
		LoadTime int64         `json:"load_time"`
	}

	return json.MarshalIndent(jsonOutput{
		Contacts: p.record,
		HTML:     p.htmlContent,
		Text:     text,
		Markdown: markdown,
		Title:    p.record.Name,
		URL:      p.record.Link,
		LoadTime: p.loadTime.Milliseconds(),
	}, "", "  ")
}

// ToCSV returns the contacts as a one row export.
func (p *PageContent) ToCSV() (string, error) {
	return output.CSVString([]output.Record{p.record}, p.csv)
}

func (p *PageContent) ToXLSX() ([]byte, error) {
	return output.XLSXBytes([]output.Record{p.record}, p.csv.WithE164)
}

func (p *PageContent) summary(bullet string) string {
	columns := output.Columns(p.csv.WithE164)
	row := p.record.Row(p.csv.WithE164)

	var b strings.Builder
	for i, col := range columns {
		fmt.Fprintf(&b, "%s%s: %s\n", bullet, col, row[i])
	}
	return b.String()
}
