package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// ErrStatus is returned for responses outside the 2xx range.
var ErrStatus = errors.New("unexpected status")

// DefaultUserAgent is sent unless Config.Headers overrides it.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultHeaders returns the browser-like headers catalog sites expect.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      DefaultUserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}

// Config configures a Fetcher.
type Config struct {
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	// Delay is the minimum spacing between two requests.
	Delay    time.Duration
	ProxyURL string
	// Insecure skips TLS verification for sites with broken chains.
	Insecure bool
	Headers  map[string]string
	Logger   *zap.Logger
}

// Page is a fetched document decoded to UTF-8.
type Page struct {
	URL     string
	Status  int
	HTML    string
	Charset string
}

// Fetcher downloads pages over plain HTTP with retries and rate limiting.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(cfg Config) *Fetcher {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = time.Second
	}

	// Retries follow retryablehttp's policy: connection errors, 429 and 5xx
	// are retried with backoff, the final response is passed through.
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWait
	retryClient.RetryWaitMax = 10 * cfg.RetryWait
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Debug("retrying request", zap.String("url", req.URL.String()), zap.Int("attempt", attempt))
		}
	}

	if transport, ok := retryClient.HTTPClient.Transport.(*http.Transport); ok {
		if cfg.ProxyURL != "" {
			proxy, err := url.Parse(cfg.ProxyURL)
			if err != nil {
				log.Warn("ignoring invalid proxy URL", zap.String("proxy", cfg.ProxyURL), zap.Error(err))
			} else {
				transport.Proxy = http.ProxyURL(proxy)
			}
		}
		if cfg.Insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetLogger(log.Sugar()).
		SetHeaders(DefaultHeaders()).
		SetHeaders(cfg.Headers)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	return &Fetcher{client: client, limiter: limiter, log: log}
}

// Fetch downloads pageURL and decodes the body to UTF-8. Requests wait for the
// rate limiter first, so concurrent callers share one request budget.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to fetch %s: %w: %s", pageURL, ErrStatus, resp.Status())
	}

	body, name := Decode(resp.Body(), resp.Header().Get("Content-Type"))

	finalURL := pageURL
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	f.log.Debug("fetched page",
		zap.String("url", finalURL),
		zap.Int("status", resp.StatusCode()),
		zap.String("charset", name),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Page{
		URL:     finalURL,
		Status:  resp.StatusCode(),
		HTML:    body,
		Charset: name,
	}, nil
}

// Decode converts an HTML body to UTF-8. The declared charset (BOM, header
// or meta tag) wins; otherwise valid UTF-8 is kept and anything else goes
// through statistical detection.
func Decode(body []byte, contentType string) (string, string) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if utf8.Valid(body) {
			return string(body), "utf-8"
		}
		name = DetectCharset(body)
		if e, canonical := charset.Lookup(name); e != nil {
			enc, name = e, canonical
		}
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body), "utf-8"
	}
	return string(decoded), name
}

// DetectCharset guesses the charset of data, defaulting to utf-8.
func DetectCharset(data []byte) string {
	detector := chardet.NewHtmlDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
