package browser

import (
	"context"
	"fmt"
	"time"

	"expograb/internal/fetcher"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RenderConfig controls page rendering.
type RenderConfig struct {
	Timeout time.Duration
	// Scroll keeps scrolling to the bottom until the page stops growing,
	// for catalogs that load entries on scroll.
	Scroll      bool
	ScrollPause time.Duration
	MaxScrolls  int
	Delay       time.Duration
	UserAgent   string
	Logger      *zap.Logger
}

// Renderer fetches pages through the browser so scripts run before the
// markup is read. It serves the same Fetch contract as fetcher.Fetcher.
type Renderer struct {
	browser *Browser
	cfg     RenderConfig
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewRenderer creates a Renderer on top of b.
func NewRenderer(b *Browser, cfg RenderConfig) *Renderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ScrollPause <= 0 {
		cfg.ScrollPause = time.Second
	}
	if cfg.MaxScrolls <= 0 {
		cfg.MaxScrolls = 50
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fetcher.DefaultUserAgent
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	return &Renderer{browser: b, cfg: cfg, limiter: limiter, log: log}
}

// Fetch renders url and returns the resulting document.
func (r *Renderer) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	tab, err := r.browser.NewPage()
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	page := tab.Context(ctx).Timeout(r.cfg.Timeout)

	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      r.cfg.UserAgent,
		AcceptLanguage: "ru-RU,ru;q=0.9",
	})
	_, _ = page.EvalOnNewDocument(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`)

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to wait for page load: %w", err)
	}

	// Wait for network idle so JS-rendered lists are populated.
	wait := page.WaitRequestIdle(
		500*time.Millisecond, nil, nil,
		[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
	)
	wait()

	if r.cfg.Scroll {
		if err := r.scrollToEnd(ctx, page); err != nil {
			return nil, err
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get page HTML: %w", err)
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &fetcher.Page{
		URL:     finalURL,
		Status:  200,
		HTML:    html,
		Charset: "utf-8",
	}, nil
}

func (r *Renderer) scrollToEnd(ctx context.Context, page *rod.Page) error {
	last := -1
	for i := 0; i < r.cfg.MaxScrolls; i++ {
		res, err := page.Eval(`() => {
			window.scrollTo(0, document.body.scrollHeight);
			return document.body.scrollHeight;
		}`)
		if err != nil {
			return fmt.Errorf("failed to scroll: %w", err)
		}

		height := res.Value.Int()
		if height == last {
			r.log.Debug("scrolled to end", zap.Int("rounds", i), zap.Int("height", height))
			return nil
		}
		last = height

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.ScrollPause):
		}
	}
	return nil
}
