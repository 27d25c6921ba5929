package generic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"expograb/internal/browser"
	"expograb/internal/contact"
	"expograb/internal/extractor"
	"expograb/internal/fetcher"
	"expograb/internal/output"
	"expograb/internal/phone"
	"expograb/internal/scraper"

	"go.uber.org/zap"
)

// GenericScraper extracts the contacts of a single page.
type GenericScraper struct{}

// NewGenericScraper creates generic scraper instance
func NewGenericScraper() *GenericScraper {
	return &GenericScraper{}
}

// Name returns scraper name
func (g *GenericScraper) Name() string {
	return "generic"
}

// Scrape fetches the page, cuts out the contact block and extracts the
// contacts. Everything the formatters need is read before returning, so
// PageContent holds no browser or connection.
func (g *GenericScraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	target = NormalizeURL(target)
	log := opts.Log()

	startTime := time.Now()
	page, err := g.fetch(ctx, target, opts, "")
	if err != nil {
		// The proxy is a fallback for pages that refuse direct access.
		if opts.ProxyURL == "" {
			return nil, fmt.Errorf("failed to fetch page: %w", err)
		}
		log.Warn("first attempt failed, retrying with proxy", zap.String("proxy", opts.ProxyURL), zap.Error(err))
		page, err = g.fetch(ctx, target, opts, opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page (even with proxy): %w", err)
		}
	}
	loadTime := time.Since(startTime)

	e, err := extractor.NewExtractor(page.HTML)
	if err != nil {
		return nil, err
	}

	level := opts.Level
	if level == "" {
		level = extractor.LevelBody
	}
	var htmlContent, textContent string
	if level == extractor.LevelBody {
		if htmlContent, err = e.Extract(extractor.LevelHTML, ""); err != nil {
			return nil, fmt.Errorf("failed to extract HTML content: %w", err)
		}
		if textContent, err = e.Extract(extractor.LevelBody, ""); err != nil {
			return nil, fmt.Errorf("failed to extract text content: %w", err)
		}
	} else {
		selector := opts.Selector
		if level == extractor.LevelXPath {
			selector = opts.XPath
		}
		if htmlContent, err = e.Extract(level, selector); err != nil {
			return nil, fmt.Errorf("failed to extract content: %w", err)
		}
		textContent = htmlContent
	}

	block, found, err := e.ContactBlock(extractor.BlockSelector{CSS: opts.Selector, XPath: opts.XPath})
	if err != nil {
		return nil, err
	}
	if !found {
		log.Warn("contact block not found, searching the whole page", zap.String("url", page.URL))
	}

	cfg := contact.DefaultConfig()
	cfg.Rules = cfg.Rules.With(opts.Exclude...)
	rec := output.NewRecord(page.URL, e.Title(), contact.New(cfg).Extract(block))
	if opts.PhoneRegion != "" && rec.Phone != "" {
		rec.PhoneE164 = phone.E164(rec.Phone, opts.PhoneRegion)
	}
	log.Info("extracted contacts",
		zap.String("url", page.URL),
		zap.Bool("website", rec.Website != ""),
		zap.Bool("phone", rec.Phone != ""),
		zap.Bool("email", rec.Email != ""),
		zap.Duration("elapsed", loadTime),
	)

	enc, err := output.ParseEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	return &PageContent{
		record:      rec,
		htmlContent: htmlContent,
		textContent: textContent,
		level:       level,
		loadTime:    loadTime,
		csv:         output.CSVOptions{Encoding: enc, WithE164: opts.PhoneRegion != ""},
	}, nil
}

func (g *GenericScraper) fetch(ctx context.Context, url string, opts scraper.Options, proxyURL string) (*fetcher.Page, error) {
	if !opts.Render {
		f := fetcher.NewFetcher(fetcher.Config{
			Timeout:  opts.Timeout,
			Retries:  opts.Retries,
			ProxyURL: proxyURL,
			Insecure: opts.Insecure,
			Headers:  opts.Headers,
			Logger:   opts.Log(),
		})
		return f.Fetch(ctx, url)
	}

	b, err := browser.New(browser.Config{ProxyURL: proxyURL, Headless: !opts.ShowUI})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	r := browser.NewRenderer(b, browser.RenderConfig{
		Timeout:   opts.Timeout,
		Scroll:    opts.Scroll,
		UserAgent: opts.Headers["User-Agent"],
		Logger:    opts.Log(),
	})
	return r.Fetch(ctx, url)
}

// NormalizeURL trims rawURL and adds http:// when it has no scheme.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "http://" + rawURL
	}
	return rawURL
}
