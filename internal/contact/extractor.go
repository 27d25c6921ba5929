// Package contact recognizes a company's website, phone and email in the
// markup of its contact area.
//
// Each field is resolved independently by walking an ordered list of
// strategies: links inside known field markers, mailto links anywhere in
// the block, pattern matches inside field markers, labeled lines, and
// finally a scan of the whole text. Within a strategy the first candidate
// in document order that survives post-processing wins.
package contact

// Result holds the extracted fields. An empty string means not found.
type Result struct {
	Website string `json:"website"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Found counts the non-empty fields.
func (r Result) Found() int {
	n := 0
	for _, v := range []string{r.Website, r.Phone, r.Email} {
		if v != "" {
			n++
		}
	}
	return n
}

// Config is the per-site extraction setup. It is passed explicitly to New;
// there is no package-level configuration.
type Config struct {
	Rules    Rules
	Patterns Patterns
	Markers  Markers
	Labels   Labels
}

// DefaultConfig returns a Config with default rules, patterns and labels and
// no markers.
func DefaultConfig() Config {
	return Config{
		Rules:    DefaultRules(),
		Patterns: DefaultPatterns(),
		Labels:   DefaultLabels(),
	}
}

// Extractor maps blocks to results. It holds no mutable state and is safe
// for concurrent use.
type Extractor struct {
	rules      Rules
	strategies []Strategy
}

// New creates an Extractor for cfg. Zero patterns fall back to the
// defaults.
func New(cfg Config) *Extractor {
	p := cfg.Patterns
	def := DefaultPatterns()
	if p.Email == nil {
		p.Email = def.Email
	}
	if p.Phone == nil {
		p.Phone = def.Phone
	}
	if p.URL == nil {
		p.URL = def.URL
	}

	return &Extractor{
		rules: cfg.Rules,
		strategies: []Strategy{
			markerLinks{markers: cfg.Markers, patterns: p},
			blockMailto{},
			markerText{markers: cfg.Markers, patterns: p},
			newLabeledLines(cfg.Labels, p),
			fullScan{patterns: p},
		},
	}
}

// Strategies returns the names of the strategies in the order they are
// tried.
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract resolves all three fields of b. A nil or empty block yields an
// empty Result.
func (e *Extractor) Extract(b *Block) Result {
	var r Result
	if b.Empty() {
		return r
	}

	// the email goes first: the website check needs its domain
	r.Email = e.resolve(b, Email, "")
	r.Phone = e.resolve(b, Phone, "")
	r.Website = e.resolve(b, Website, r.Email)
	return r
}

// ExtractMarkup is a shorthand for Extract(NewBlock(markup)).
func (e *Extractor) ExtractMarkup(markup string) Result {
	return e.Extract(NewBlock(markup))
}

func (e *Extractor) resolve(b *Block, f Field, email string) string {
	for _, s := range e.strategies {
		for _, raw := range s.Candidates(b, f) {
			if v, ok := e.accept(f, raw, email); ok {
				return v
			}
		}
	}
	return ""
}

func (e *Extractor) accept(f Field, raw, email string) (string, bool) {
	switch f {
	case Website:
		return NormalizeWebsite(raw, e.rules, email)
	case Phone:
		return NormalizePhone(raw)
	case Email:
		return NormalizeEmail(raw)
	}
	return "", false
}
