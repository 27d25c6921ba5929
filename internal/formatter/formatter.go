package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"expograb/internal/scraper"
)

// Formats lists the accepted output formats.
var Formats = []string{"html", "text", "markdown", "json", "csv", "xlsx"}

func Format(content scraper.Content, format string) (string, error) {
	switch format {
	case "html":
		return content.ToHTML()
	case "text":
		return content.ToText()
	case "markdown":
		return content.ToMarkdown()
	case "csv":
		return content.ToCSV()
	case "json":
		b, err := content.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case "xlsx":
		b, err := content.ToXLSX()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Binary reports whether format must go to a file rather than a terminal.
func Binary(format string) bool {
	return format == "xlsx"
}

// FromExtension infers output format from file extension
func FromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	default:
		return ""
	}
}
