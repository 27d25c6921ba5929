package expocatalog

import (
	"testing"

	"expograb/internal/extractor"
	"expograb/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSites(t *testing.T) {
	names := map[string]bool{}
	for _, site := range Sites() {
		require.NoError(t, site.Validate())
		assert.False(t, names[site.Name], "duplicate %s", site.Name)
		names[site.Name] = true

		_, ok := scraper.Get(site.Name)
		assert.True(t, ok, "%s is not registered", site.Name)
	}
	assert.Len(t, names, 5)
}

func TestSites_Upakexpo(t *testing.T) {
	for _, site := range Sites() {
		if site.Name != "upakexpo" {
			assert.True(t, site.Block.Strict, site.Name)
			continue
		}
		assert.False(t, site.Block.Strict)
		assert.Contains(t, site.List.URLFilter, "view=company")
	}
}

func TestBase_List(t *testing.T) {
	markup := `<div id="scroll_list">
<div class="scroll_item"><a href="/company/77" title="Климат Про">КЛИМАТ ПРО<br>Павильон 3</a></div>
<div class="scroll_item"><a href="/company/78" title="">Вент Систем</a></div>
<div class="scroll_item"><a href="/news/1" title="Новости">Новости</a></div>
</div>`

	companies, err := extractor.Companies(markup, "https://catalog.climatexpo.ru/expositions/exposition/6614", Base().List)
	require.NoError(t, err)
	assert.Equal(t, []extractor.Company{
		{Name: "Климат Про", URL: "https://catalog.climatexpo.ru/company/77"},
		{Name: "Вент Систем", URL: "https://catalog.climatexpo.ru/company/78"},
	}, companies)
}
