package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedScraper string

func (n namedScraper) Name() string { return string(n) }

func (n namedScraper) Scrape(context.Context, string, Options) (Content, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register(namedScraper("Zeta"))
	Register(namedScraper("alpha"))

	s, ok := Get("zeta")
	assert.True(t, ok)
	assert.Equal(t, "Zeta", s.Name())

	_, ok = Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"alpha", "zeta"}, Names())
}

func TestOptions_Log(t *testing.T) {
	assert.NotNil(t, Options{}.Log())
}
