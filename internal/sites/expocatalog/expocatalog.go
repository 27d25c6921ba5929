// Package expocatalog registers the exhibitions published on the shared
// expo catalog engine: a paginated "#scroll_list" of companies whose pages
// keep their contacts in "#tab_contacts_flat".
package expocatalog

import (
	"time"

	"expograb/internal/catalog"
	"expograb/internal/extractor"
	"expograb/internal/scraper"
)

func init() {
	for _, site := range Sites() {
		scraper.Register(catalog.NewScraper(site))
	}
}

// Base returns the engine defaults shared by every preset.
func Base() catalog.Site {
	return catalog.Site{
		Pagination: catalog.Pagination{Param: "start", PageSize: 48, MaxPages: 20},
		List: extractor.ListSelector{
			Item:      "#scroll_list .scroll_item a",
			NameAttr:  "title",
			URLFilter: []string{"/company/"},
		},
		Block:   extractor.BlockSelector{CSS: "#tab_contacts_flat", Strict: true},
		Exclude: []string{"catalog."},
		Delay:   time.Second,
	}
}

// Sites returns the known exhibitions.
func Sites() []catalog.Site {
	climatexpo := Base()
	climatexpo.Name = "climatexpo"
	climatexpo.Description = "Climate World exhibitors (catalog.climatexpo.ru)"
	climatexpo.StartURL = "https://catalog.climatexpo.ru/expositions/exposition/6614"

	textile := Base()
	textile.Name = "textile-salon"
	textile.Description = "Textile Salon exhibitors (catalog.textile-salon.ru)"
	textile.StartURL = "https://catalog.textile-salon.ru/expositions/exposition/6710.html"

	cpm := Base()
	cpm.Name = "cpm"
	cpm.Description = "CPM Collection Premiere Moscow exhibitors (cpm-digital.ru)"
	cpm.StartURL = "https://cpm-digital.ru/expositions/exposition/155-cpm-2026-spring.html"

	skrepka := Base()
	skrepka.Name = "skrepka"
	skrepka.Description = "Skrepka Expo exhibitors (forvisitors.skrepkaexpo.ru)"
	skrepka.StartURL = "https://forvisitors.skrepkaexpo.ru/expositions/exposition/6164-skrepka-expo-2026.html"
	skrepka.List.URLFilter = []string{"/company/", "view=company"}

	// upakexpo company pages often lack the contacts tab
	upak := Base()
	upak.Name = "upakexpo"
	upak.Description = "UpakExpo exhibitors (upakexpo-online.ru)"
	upak.StartURL = "https://upakexpo-online.ru/expositions/exposition/137-upakexpo-2026"
	upak.Block.Strict = false
	upak.List.URLFilter = []string{"/company/", "view=company"}

	return []catalog.Site{climatexpo, textile, cpm, skrepka, upak}
}
