package diveshow

import (
	"context"
	"fmt"
	"testing"

	"expograb/internal/catalog"
	"expograb/internal/fetcher"
	"expograb/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pages map[string]string

func (p pages) Fetch(_ context.Context, url string) (*fetcher.Page, error) {
	markup, ok := p[url]
	if !ok {
		return nil, fmt.Errorf("%s: %w", url, fetcher.ErrStatus)
	}
	return &fetcher.Page{URL: url, Status: 200, HTML: markup}, nil
}

func TestSite_Registered(t *testing.T) {
	s, ok := scraper.Get("diveshow")
	require.True(t, ok)
	assert.Equal(t, "diveshow", s.Name())
	assert.NoError(t, Site().Validate())
}

func TestSite_Run(t *testing.T) {
	src := pages{
		"https://www.diveshow.ru/companies/": `<div class="list">
<a class="s_company" href="/companies/aqua/">Аква Дайв</a>
<a class="s_company" href="/companies/deep/">  Deep
   Blue </a>
<a href="/about/">О выставке</a>
</div>`,
		"https://www.diveshow.ru/companies/aqua/": `<div class="company_contacts">
<p><a href="https://www.diveshow.ru/companies/">Все участники</a></p>
<p>Сайт: www.aquadive.ru</p>
<p>Телефон: 8 (800) 555-35-35</p>
<p>E-mail: info@aquadive.ru</p>
<p><a href="https://youtube.com/aquadive">youtube.com/aquadive</a></p>
</div>`,
		"https://www.diveshow.ru/companies/deep/": `<p>Телефон выставки: +7 495 000-00-00</p>`,
	}

	records, stats, err := catalog.NewScraper(Site()).Run(context.Background(), src, src, Site().StartURL, scraper.Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Аква Дайв", records[0].Name)
	assert.Equal(t, "https://www.aquadive.ru", records[0].Website)
	assert.Equal(t, "8 (800) 555-35-35", records[0].Phone)
	assert.Equal(t, "info@aquadive.ru", records[0].Email)

	assert.Equal(t, "Deep Blue", records[1].Name)
	assert.Empty(t, records[1].Phone, "contacts outside .company_contacts are ignored")
	assert.Equal(t, 2, stats.Companies)
}
