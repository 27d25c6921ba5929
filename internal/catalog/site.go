package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expograb/internal/contact"
	"expograb/internal/extractor"
)

// DefaultMaxPages bounds paginated lists whose site sets no limit.
const DefaultMaxPages = 20

// Pagination describes offset paging: page n is the start URL with
// Param set to n*PageSize. A zero PageSize means a single list page.
type Pagination struct {
	Param    string `yaml:"param"`
	PageSize int    `yaml:"page_size"`
	MaxPages int    `yaml:"max_pages"`
}

// Site is the configuration of one exhibition catalog.
type Site struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	StartURL    string                  `yaml:"start_url"`
	Pagination  Pagination              `yaml:"pagination"`
	List        extractor.ListSelector  `yaml:"list"`
	Block       extractor.BlockSelector `yaml:"block"`
	Markers     contact.Markers         `yaml:"markers"`
	// Exclude holds website exclusions on top of the defaults and the
	// catalog's own domain.
	Exclude []string `yaml:"exclude"`
	// Render fetches pages through the headless browser; Scroll also
	// scrolls list pages to their end.
	Render   bool          `yaml:"render"`
	Scroll   bool          `yaml:"scroll"`
	Insecure bool          `yaml:"insecure"`
	Delay    time.Duration `yaml:"delay"`
	// StripLegalForm drops "ООО", "АО" and similar from company names.
	StripLegalForm bool `yaml:"strip_legal_form"`
}

// Validate checks the fields every site needs.
func (s Site) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.StartURL == "" {
		errs = append(errs, errors.New("start_url is required"))
	} else if u, err := url.Parse(s.StartURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("start_url is not an absolute URL: %s", s.StartURL))
	}
	if s.List.Item == "" {
		errs = append(errs, errors.New("list.item is required"))
	}
	if s.Pagination.PageSize < 0 || s.Pagination.MaxPages < 0 {
		errs = append(errs, errors.New("pagination values must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("site %q: %w", s.Name, err)
	}
	return nil
}

// PageURL returns the URL of list page n (zero based) of start.
func (s Site) PageURL(start string, n int) (string, error) {
	if n == 0 || s.Pagination.PageSize == 0 {
		return start, nil
	}
	u, err := url.Parse(start)
	if err != nil {
		return "", fmt.Errorf("failed to parse start URL: %w", err)
	}
	param := s.Pagination.Param
	if param == "" {
		param = "start"
	}
	q := u.Query()
	q.Set(param, strconv.Itoa(n*s.Pagination.PageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PageLimit returns how many list pages to walk. override wins when set.
func (s Site) PageLimit(override int) int {
	if s.Pagination.PageSize == 0 {
		return 1
	}
	if override > 0 {
		return override
	}
	if s.Pagination.MaxPages > 0 {
		return s.Pagination.MaxPages
	}
	return DefaultMaxPages
}

// ContactConfig builds the extraction setup of the site for a run that
// starts at start, whose domain is excluded. An empty start means the
// site's StartURL. extra adds run specific exclusions.
func (s Site) ContactConfig(start string, extra ...string) contact.Config {
	if start == "" {
		start = s.StartURL
	}
	cfg := contact.DefaultConfig()
	exclude := append([]string(nil), s.Exclude...)
	if own := OwnDomain(start); own != "" {
		exclude = append(exclude, own)
	}
	cfg.Rules = cfg.Rules.With(append(exclude, extra...)...)
	cfg.Markers = s.Markers
	return cfg
}

// OwnDomain returns the registrable part of rawURL's host, e.g.
// "climatexpo.ru" for catalog.climatexpo.ru.
func OwnDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	labels := strings.Split(strings.ToLower(u.Hostname()), ".")
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
