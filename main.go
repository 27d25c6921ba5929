package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"expograb/internal/catalog"
	"expograb/internal/config"
	"expograb/internal/extractor"
	"expograb/internal/formatter"
	"expograb/internal/logging"
	"expograb/internal/output"
	"expograb/internal/scraper"
	_ "expograb/internal/sites/agravia"
	_ "expograb/internal/sites/diveshow"
	_ "expograb/internal/sites/expocatalog"
	generic "expograb/internal/sites/generic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var (
	headers      []string
	outputFormat string
	outputFile   string
	timeout      time.Duration
	retries      int
	level        string
	selector     string
	xpath        string
	site         string
	render       bool
	scroll       bool
	showUI       bool
	insecure     bool
	proxyURL     string
	concurrency  int
	delay        time.Duration
	maxPages     int
	encoding     string
	phoneRegion  string
	exclude      []string
	sitesFile    string
	resume       bool
	envFile      string
	logLevel     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "expograb [URL]",
		Short:   "Collect exhibitor contacts from exhibition catalogs",
		Version: version,
		Long: `expograb walks the company list of an exhibition catalog, opens every
company page and extracts the website, phone and email of the company.
Without --site it extracts the contacts of a single page.`,
		Example: `  # Collect a built-in catalog into a Windows-1251 CSV
  expograb --site climatexpo -o climatexpo.csv

  # Continue an interrupted run, refetching only failed companies
  expograb --site agravia -o agravia.csv --resume

  # Render a scrolling catalog in the browser and write Excel
  expograb --site upakexpo --render --scroll -o upakexpo.xlsx

  # Catalogs described in YAML
  expograb --sites-file sites.yaml --site interior -f json

  # Contacts of one page, searched inside a CSS block
  expograb -s ".company_contacts" https://www.diveshow.ru/companies/aqua/`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && site == "" {
				cmd.Help()
				os.Exit(0)
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		RunE:         run,
		SilenceUsage: true,
	}

	defaults := config.Default()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&sitesFile, "sites-file", "", "YAML file with extra site definitions (EXPOGRAB_SITES_FILE)")
	pf.StringVar(&envFile, "env-file", config.DefaultEnvFile, "File with EXPOGRAB_* variables, ignored when missing")
	pf.StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.StringSliceVarP(&headers, "header", "H", []string{}, "HTTP headers (can be used multiple times)")
	f.StringVarP(&outputFormat, "format", "f", "text", "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	f.StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	f.DurationVarP(&timeout, "timeout", "t", defaults.Timeout, "Request timeout duration")
	f.IntVar(&retries, "retries", defaults.Retries, "Retries on network errors and 5xx responses")
	f.StringVarP(&level, "level", "l", "body", "Page excerpt level without --site (full, html, body, content, xpath, css)")
	f.StringVarP(&selector, "selector", "s", "", "CSS selector of the contact block (overrides the site's)")
	f.StringVar(&xpath, "xpath", "", "XPath of the contact block (overrides the site's)")
	f.StringVar(&site, "site", "", "Catalog to collect (see 'expograb sites')")
	f.BoolVar(&render, "render", false, "Fetch pages through a headless browser")
	f.BoolVar(&scroll, "scroll", false, "Scroll rendered list pages to the end (implies --render)")
	f.BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	f.BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	f.StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890), defaults to EXPOGRAB_PROXY env var")
	f.IntVar(&concurrency, "concurrency", defaults.Concurrency, "Company pages fetched in parallel")
	f.DurationVar(&delay, "delay", 0, "Minimum pause between requests (site default when 0)")
	f.IntVar(&maxPages, "max-pages", 0, "Max list pages to walk (0 for the site's limit)")
	f.StringVar(&encoding, "encoding", defaults.Encoding, "CSV encoding (win1251, utf-8)")
	f.StringVar(&phoneRegion, "phone-region", "", "Add an E.164 phone column, parsing local numbers for this region (e.g. RU)")
	f.StringSliceVar(&exclude, "exclude", []string{}, "Extra substrings that disqualify a website (can be used multiple times)")
	f.BoolVar(&resume, "resume", false, "Skip companies already collected in the -o CSV file")

	rootCmd.AddCommand(newSitesCmd())
	return rootCmd
}

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the known catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if sitesFile == "" {
				sitesFile = cfg.SitesFile
			}
			if sitesFile != "" {
				if _, err := config.RegisterSites(sitesFile); err != nil {
					return err
				}
			}

			for _, name := range scraper.Names() {
				s, _ := scraper.Get(name)
				desc := ""
				if d, ok := s.(scraper.Describer); ok {
					desc = d.Description()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, desc)
			}
			return nil
		},
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	applyConfig(cmd, cfg)

	log, err := logging.New(logging.Config{Level: logLevel, Development: cfg.LogDev})
	if err != nil {
		return err
	}
	defer log.Sync()

	if sitesFile != "" {
		names, err := config.RegisterSites(sitesFile)
		if err != nil {
			return err
		}
		log.Debug("loaded sites", zap.String("file", sitesFile), zap.Strings("names", names))
	}

	// If output file is specified but format is not, infer format from file extension
	if outputFile != "" && !cmd.Flags().Changed("format") {
		if inferred := formatter.FromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}

	if err := validateFlags(); err != nil {
		return err
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	opts := scraper.Options{
		Headers:     parseHeaders(headers),
		Timeout:     timeout,
		Retries:     retries,
		Delay:       delay,
		Concurrency: concurrency,
		Level:       level,
		Selector:    selector,
		XPath:       xpath,
		Render:      render || scroll,
		Scroll:      scroll,
		ShowUI:      showUI,
		ProxyURL:    proxyURL,
		Insecure:    insecure,
		MaxPages:    maxPages,
		Encoding:    encoding,
		PhoneRegion: phoneRegion,
		Exclude:     exclude,
		Logger:      log,
	}

	var prev []output.Record
	if resume {
		enc, _ := output.ParseEncoding(encoding)
		prev, err = output.ReadCSVFile(outputFile, enc)
		if err != nil {
			return err
		}
		opts.Skip = output.Done(prev)
		log.Info("resuming", zap.String("file", outputFile), zap.Int("done", len(opts.Skip)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var s scraper.Scraper
	if site != "" {
		// Site-specific mode: Get Scraper from registry
		var ok bool
		s, ok = scraper.Get(site)
		if !ok {
			return fmt.Errorf("unknown site: %s (see 'expograb sites')", site)
		}
	} else {
		s = generic.NewGenericScraper()
	}

	// An interrupted catalog run still writes what it collected, so that
	// --resume can continue from there.
	content, scrapeErr := s.Scrape(ctx, target, opts)
	if scrapeErr != nil && (content == nil || !errors.Is(scrapeErr, catalog.ErrInterrupted)) {
		return fmt.Errorf("failed to scrape: %w", scrapeErr)
	}
	if c, ok := content.(*catalog.Content); ok && resume {
		c.Merge(prev)
	}

	outputContent, err := formatter.Format(content, outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(outputContent), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		log.Info("output written", zap.String("path", outputFile), zap.String("format", outputFormat))
	} else {
		fmt.Println(outputContent)
	}
	if scrapeErr != nil {
		log.Warn("partial output written, rerun with --resume to continue")
		return scrapeErr
	}
	return nil
}

// applyConfig fills the flags the user did not set from the environment.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	if !changed("timeout") {
		timeout = cfg.Timeout
	}
	if !changed("retries") {
		retries = cfg.Retries
	}
	if !changed("delay") {
		delay = cfg.Delay
	}
	if !changed("concurrency") {
		concurrency = cfg.Concurrency
	}
	if !changed("proxy") {
		proxyURL = cfg.Proxy
	}
	if !changed("encoding") {
		encoding = cfg.Encoding
	}
	if !changed("phone-region") {
		phoneRegion = cfg.PhoneRegion
	}
	if !changed("sites-file") {
		sitesFile = cfg.SitesFile
	}
	if !changed("log-level") {
		logLevel = cfg.LogLevel
	}
}

func validateFlags() error {
	validFormats := make(map[string]bool, len(formatter.Formats))
	for _, f := range formatter.Formats {
		validFormats[f] = true
	}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}
	if formatter.Binary(outputFormat) && outputFile == "" {
		return fmt.Errorf("--output is required for '%s' format", outputFormat)
	}

	if _, err := output.ParseEncoding(encoding); err != nil {
		return err
	}

	validLevels := map[string]bool{
		extractor.LevelFull:    true,
		extractor.LevelHTML:    true,
		extractor.LevelBody:    true,
		extractor.LevelContent: true,
		extractor.LevelXPath:   true,
		extractor.LevelCSS:     true,
	}
	if !validLevels[level] {
		return fmt.Errorf("invalid content level: %s", level)
	}
	if level == extractor.LevelCSS && selector == "" {
		return fmt.Errorf("--selector is required when using 'css' level")
	}
	if level == extractor.LevelXPath && xpath == "" {
		return fmt.Errorf("--xpath is required when using 'xpath' level")
	}

	if concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}
	if maxPages < 0 {
		return fmt.Errorf("--max-pages must not be negative")
	}

	if resume {
		if site == "" {
			return fmt.Errorf("--resume requires --site")
		}
		if outputFile == "" || outputFormat != "csv" {
			return fmt.Errorf("--resume requires a CSV --output file")
		}
	}
	return nil
}

// parseHeaders parses request header parameters
func parseHeaders(headerSlice []string) map[string]string {
	headersMap := make(map[string]string)
	for _, h := range headerSlice {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" {
				headersMap[key] = value
			}
		}
	}
	return headersMap
}
