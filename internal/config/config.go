package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"expograb/internal/catalog"
	"expograb/internal/scraper"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable, e.g. EXPOGRAB_PROXY.
const Prefix = "EXPOGRAB"

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// Config holds the defaults of the command line flags.
type Config struct {
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Retries     int           `envconfig:"RETRIES" default:"2"`
	Delay       time.Duration `envconfig:"DELAY" default:"0s"`
	Concurrency int           `envconfig:"CONCURRENCY" default:"4"`
	Proxy       string        `envconfig:"PROXY"`
	Encoding    string        `envconfig:"ENCODING" default:"win1251"`
	PhoneRegion string        `envconfig:"PHONE_REGION"`
	SitesFile   string        `envconfig:"SITES_FILE"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	// LogDev selects readable console logs over JSON.
	LogDev      bool          `envconfig:"LOG_DEV" default:"true"`
}

// Load reads envFile into the environment, then the configuration from
// the environment. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		Retries:     2,
		Concurrency: catalog.DefaultConcurrency,
		Encoding:    "win1251",
		LogLevel:    "info",
		LogDev:      true,
	}
}

// SitesFile is the layout of a YAML site definition file.
type SitesFile struct {
	Sites []catalog.Site `yaml:"sites"`
}

// LoadSites reads and validates the site definitions in path. Unknown keys
// are rejected so typos do not silently disable a selector.
func LoadSites(path string) ([]catalog.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var file SitesFile
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var errs []error
	for _, s := range file.Sites {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid sites in %s: %w", path, err)
	}
	return file.Sites, nil
}

// RegisterSites loads path and registers a catalog scraper per site. A
// site named like a built-in one replaces it.
func RegisterSites(path string) ([]string, error) {
	sites, err := LoadSites(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sites))
	for _, s := range sites {
		scraper.Register(catalog.NewScraper(s))
		names = append(names, s.Name)
	}
	return names, nil
}
