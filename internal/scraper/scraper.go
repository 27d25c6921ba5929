package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scraper interface {
	Name() string
	// Scrape may return partial content together with an error when the
	// run is interrupted.
	Scrape(ctx context.Context, target string, opts Options) (Content, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
	ToXLSX() ([]byte, error)
}

// Describer is implemented by scrapers that can explain what they cover.
type Describer interface {
	Description() string
}

type Options struct {
	Headers     map[string]string
	Timeout     time.Duration
	Retries     int
	Delay       time.Duration // minimum spacing between requests
	Concurrency int           // company pages fetched in parallel
	Level       string        // full/html/body/content/xpath/css (generic mode)
	Selector    string        // CSS contact block (overrides the site's)
	XPath       string        // XPath contact block (overrides the site's)
	Render      bool          // fetch through the headless browser
	Scroll      bool
	ShowUI      bool
	ProxyURL    string // --proxy flag or EXPOGRAB_PROXY env var
	Insecure    bool
	MaxPages    int // list pages to walk, 0 for the site's limit
	Encoding    string
	PhoneRegion string   // adds an E.164 column when set
	Exclude     []string // extra website exclusions
	Skip        map[string]bool
	Logger      *zap.Logger
}

// Log returns opts.Logger or a no-op logger.
func (o Options) Log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
