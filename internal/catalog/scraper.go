package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"expograb/internal/browser"
	"expograb/internal/contact"
	"expograb/internal/extractor"
	"expograb/internal/fetcher"
	"expograb/internal/output"
	"expograb/internal/phone"
	"expograb/internal/scraper"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoCompanies is returned when the list pages yield no company links.
var ErrNoCompanies = errors.New("no companies found")

// ErrInterrupted is returned together with the records collected so far
// when the context is cancelled while company pages are processed.
var ErrInterrupted = errors.New("run interrupted")

// DefaultConcurrency is the number of company pages fetched at once.
const DefaultConcurrency = 4

// PageSource loads a page. fetcher.Fetcher and browser.Renderer both
// satisfy it.
type PageSource interface {
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)
}

// Stats summarizes a run.
type Stats struct {
	Companies int `json:"companies"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Websites  int `json:"websites"`
	Phones    int `json:"phones"`
	Emails    int `json:"emails"`
}

func (s *Stats) add(r output.Record) {
	s.Companies++
	if r.Failed {
		s.Failed++
		return
	}
	if r.Website != "" {
		s.Websites++
	}
	if r.Phone != "" {
		s.Phones++
	}
	if r.Email != "" {
		s.Emails++
	}
}

// Scraper walks a catalog's list pages and extracts contacts from every
// company page.
type Scraper struct {
	site Site
}

// NewScraper creates a scraper for site.
func NewScraper(site Site) *Scraper {
	return &Scraper{site: site}
}

func (s *Scraper) Name() string {
	return s.site.Name
}

func (s *Scraper) Description() string {
	return s.site.Description
}

// Scrape collects every company of the catalog. target replaces the start
// URL when not empty.
func (s *Scraper) Scrape(ctx context.Context, target string, opts scraper.Options) (scraper.Content, error) {
	start := s.site.StartURL
	if target != "" {
		start = target
	}

	list, pages, closeFn, err := s.sources(opts)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	enc, err := output.ParseEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	records, stats, err := s.Run(ctx, list, pages, start, opts)
	if err != nil && !errors.Is(err, ErrInterrupted) {
		return nil, err
	}
	return NewContent(s.site.Name, start, records, stats, output.CSVOptions{
		Encoding: enc,
		WithE164: opts.PhoneRegion != "",
	}), err
}

// Run does the scraping with the given page sources: list serves the
// catalog pages and pages the company pages. When ctx is cancelled after
// the company list is known, the finished records are returned with an
// error wrapping ErrInterrupted.
func (s *Scraper) Run(ctx context.Context, list, pages PageSource, start string, opts scraper.Options) ([]output.Record, Stats, error) {
	log := opts.Log().With(zap.String("site", s.site.Name))

	companies, err := s.Companies(ctx, list, start, opts.MaxPages, log)
	if err != nil {
		return nil, Stats{}, err
	}
	if len(companies) == 0 {
		return nil, Stats{}, fmt.Errorf("%s: %w", start, ErrNoCompanies)
	}
	log.Info("collected companies", zap.Int("count", len(companies)))

	block := s.site.Block
	if opts.Selector != "" || opts.XPath != "" {
		block = extractor.BlockSelector{CSS: opts.Selector, XPath: opts.XPath, Strict: block.Strict}
	}
	ext := contact.New(s.site.ContactConfig(start, opts.Exclude...))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*output.Record, len(companies))
	var skipped, done atomic.Int64
	total := len(companies)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range companies {
		if opts.Skip[c.URL] {
			skipped.Add(1)
			continue
		}
		i, c := i, c
		g.Go(func() error {
			rec, err := s.company(gctx, pages, ext, block, c, opts.PhoneRegion, log)
			if err != nil {
				return err
			}
			results[i] = &rec
			log.Info("company done",
				zap.Int64("n", done.Add(1)),
				zap.Int("total", total),
				zap.String("name", rec.Name),
				zap.Bool("failed", rec.Failed),
			)
			return nil
		})
	}
	werr := g.Wait()
	if werr != nil && ctx.Err() == nil {
		return nil, Stats{}, werr
	}

	records := make([]output.Record, 0, len(companies))
	stats := Stats{Skipped: int(skipped.Load())}
	for _, r := range results {
		if r == nil {
			continue
		}
		records = append(records, *r)
		stats.add(*r)
	}
	if werr != nil {
		log.Warn("interrupted",
			zap.Int("companies", stats.Companies),
			zap.Int("remaining", total-stats.Skipped-stats.Companies),
		)
		return records, stats, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
	log.Info("finished",
		zap.Int("companies", stats.Companies),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("websites", stats.Websites),
		zap.Int("phones", stats.Phones),
		zap.Int("emails", stats.Emails),
	)
	return records, stats, nil
}

func (s *Scraper) company(ctx context.Context, src PageSource, ext *contact.Extractor, sel extractor.BlockSelector, c extractor.Company, region string, log *zap.Logger) (output.Record, error) {
	page, err := src.Fetch(ctx, c.URL)
	if err != nil {
		if ctx.Err() != nil {
			return output.Record{}, ctx.Err()
		}
		log.Warn("failed to fetch company page", zap.String("url", c.URL), zap.Error(err))
		return output.ErrorRecord(c.URL, c.Name), nil
	}

	block, found, err := extractor.ContactBlock(page.HTML, sel)
	if err != nil {
		return output.Record{}, fmt.Errorf("contact block of %s: %w", c.URL, err)
	}
	if !found {
		log.Debug("contact block not found", zap.String("url", c.URL))
	}

	rec := output.NewRecord(c.URL, c.Name, ext.Extract(block))
	if region != "" && rec.Phone != "" {
		rec.PhoneE164 = phone.E164(rec.Phone, region)
	}
	return rec, nil
}

// Companies walks the list pages from start and returns the companies in
// page order without duplicates. Walking stops at an empty or short page,
// at a page with nothing new, or at the page limit.
func (s *Scraper) Companies(ctx context.Context, src PageSource, start string, maxPages int, log *zap.Logger) ([]extractor.Company, error) {
	if log == nil {
		log = zap.NewNop()
	}
	seen := make(map[string]bool)
	var companies []extractor.Company

	limit := s.site.PageLimit(maxPages)
	for n := 0; n < limit; n++ {
		pageURL, err := s.site.PageURL(start, n)
		if err != nil {
			return nil, err
		}
		page, err := src.Fetch(ctx, pageURL)
		if err != nil {
			if n == 0 || ctx.Err() != nil {
				return nil, fmt.Errorf("failed to fetch list page %s: %w", pageURL, err)
			}
			log.Warn("failed to fetch list page, stopping", zap.String("url", pageURL), zap.Error(err))
			break
		}

		base := page.URL
		if base == "" {
			base = pageURL
		}
		found, err := extractor.Companies(page.HTML, base, s.site.List)
		if err != nil {
			return nil, err
		}

		fresh := 0
		for _, c := range found {
			if seen[c.URL] {
				continue
			}
			seen[c.URL] = true
			c.Name = CleanName(c.Name, s.site.StripLegalForm)
			companies = append(companies, c)
			fresh++
		}
		log.Info("list page", zap.Int("page", n+1), zap.String("url", pageURL), zap.Int("new", fresh))

		if fresh == 0 || len(found) < s.site.Pagination.PageSize {
			break
		}
	}
	return companies, nil
}

// sources builds the page sources for a run. Rendering shares one browser
// between the list and company pages; only list pages are scrolled.
func (s *Scraper) sources(opts scraper.Options) (PageSource, PageSource, func(), error) {
	log := opts.Log()
	delay := opts.Delay
	if delay <= 0 {
		delay = s.site.Delay
	}

	if s.site.Render || opts.Render {
		b, err := browser.New(browser.Config{ProxyURL: opts.ProxyURL, Headless: !opts.ShowUI})
		if err != nil {
			return nil, nil, nil, err
		}
		cfg := browser.RenderConfig{
			Timeout:   opts.Timeout,
			Delay:     delay,
			UserAgent: opts.Headers["User-Agent"],
			Logger:    log,
		}
		pages := browser.NewRenderer(b, cfg)
		cfg.Scroll = s.site.Scroll || opts.Scroll
		list := browser.NewRenderer(b, cfg)
		return list, pages, func() {
			if err := b.Close(); err != nil {
				log.Warn("failed to close browser", zap.Error(err))
			}
		}, nil
	}

	f := fetcher.NewFetcher(fetcher.Config{
		Timeout:  opts.Timeout,
		Retries:  opts.Retries,
		Delay:    delay,
		ProxyURL: opts.ProxyURL,
		Insecure: s.site.Insecure || opts.Insecure,
		Headers:  opts.Headers,
		Logger:   log,
	})
	return f, f, func() {}, nil
}
