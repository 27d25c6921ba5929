package agravia

import (
	"time"

	"expograb/internal/catalog"
	"expograb/internal/contact"
	"expograb/internal/extractor"
	"expograb/internal/scraper"
)

func init() {
	scraper.Register(catalog.NewScraper(Site()))
}

// Site describes the AgroFarm/Agravia catalog. Contacts sit in marked
// sub-elements of "#tab_contacts_flat".
func Site() catalog.Site {
	return catalog.Site{
		Name:        "agravia",
		Description: "Agravia exhibition catalog (catalog.agravia.org)",
		StartURL:    "https://catalog.agravia.org/expositions/exposition/6228",
		Pagination:  catalog.Pagination{Param: "start", PageSize: 48, MaxPages: 20},
		List: extractor.ListSelector{
			Item:      "#scroll_list .scroll_item a",
			Name:      ".comp_name",
			URLFilter: []string{"/company/"},
		},
		Block: extractor.BlockSelector{CSS: "#tab_contacts_flat", Strict: true},
		Markers: contact.Markers{
			Website: ".company_site",
			Phone:   ".company_phone",
			Email:   ".company_email",
		},
		Delay: 1500 * time.Millisecond,
	}
}
