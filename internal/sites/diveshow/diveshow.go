package diveshow

import (
	"time"

	"expograb/internal/catalog"
	"expograb/internal/extractor"
	"expograb/internal/scraper"
)

func init() {
	scraper.Register(catalog.NewScraper(Site()))
}

// Site describes the Moscow Dive Show exhibitor list. It is a single page
// of ".s_company" links; contacts are read only from ".company_contacts".
// The site serves an incomplete certificate chain.
func Site() catalog.Site {
	return catalog.Site{
		Name:        "diveshow",
		Description: "Moscow Dive Show exhibitors (www.diveshow.ru)",
		StartURL:    "https://www.diveshow.ru/companies/",
		List:        extractor.ListSelector{Item: ".s_company"},
		Block:       extractor.BlockSelector{CSS: ".company_contacts", Strict: true},
		Exclude:     []string{"youtube.com", "t.me"},
		Insecure:    true,
		Delay:       1200 * time.Millisecond,
	}
}
