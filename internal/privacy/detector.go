package privacy

import (
	"fmt"

	"github.com/raaihank/docmask/internal/config"
	"github.com/raaihank/docmask/internal/logger"
	"go.uber.org/zap"
)

// Detector runs the fixed rule table over text buffers. Its state is
// immutable after construction, so a single instance is safe to share
// across concurrent requests without synchronization. Runtime
// configuration changes are handled by building a new instance and
// swapping it in.
type Detector struct {
	rules   []DetectionRule
	enabled map[Category]bool
	logger  *logger.Logger
	config  config.PrivacyConfig
}

// Options carries per-request detection overrides: the category toggles
// from the upload form and the literal values the operator chose to keep
// unmasked after review.
type Options struct {
	// Categories limits detection to the given categories. A nil map
	// means "use the configured set".
	Categories map[Category]bool

	// Ignore lists exact matched values that must not be masked.
	Ignore []string
}

// ReviewItem is one unique detected value presented to the operator
// during the analyze step.
type ReviewItem struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
}

// New creates a detector from the privacy configuration.
func New(cfg config.PrivacyConfig, log *logger.Logger) (*Detector, error) {
	d := &Detector{
		rules:   DefaultRules(),
		enabled: make(map[Category]bool),
		logger:  log,
		config:  cfg,
	}

	if err := d.configureDetectors(cfg.Detectors); err != nil {
		return nil, fmt.Errorf("failed to configure detectors: %w", err)
	}

	log.Info("Privacy detector initialized",
		zap.Int("total_rules", len(d.rules)),
		zap.Int("enabled_rules", len(d.EnabledCategories())),
	)

	return d, nil
}

// configureDetectors enables the configured subset of rules. "all"
// enables every rule.
func (d *Detector) configureDetectors(detectors []string) error {
	for _, rule := range d.rules {
		d.enabled[rule.Category] = false
	}

	for _, name := range detectors {
		if name == "all" {
			for _, rule := range d.rules {
				d.enabled[rule.Category] = true
			}
			continue
		}

		found := false
		for _, rule := range d.rules {
			if string(rule.Category) == name {
				d.enabled[rule.Category] = true
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown detector: %s", name)
		}
	}

	return nil
}

// activeRules intersects the configured categories with the per-request
// toggles, preserving rule-declaration order.
func (d *Detector) activeRules(opts Options) []DetectionRule {
	active := make([]DetectionRule, 0, len(d.rules))
	for _, rule := range d.rules {
		if !d.enabled[rule.Category] {
			continue
		}
		if opts.Categories != nil && !opts.Categories[rule.Category] {
			continue
		}
		active = append(active, rule)
	}
	return active
}

// ScanText scans one text buffer and produces its masked form. Zero
// matches is a normal result, not an error.
func (d *Detector) ScanText(text string, opts Options) ScanResult {
	if !d.config.Enabled {
		return ScanResult{Original: text, MaskedText: text, Matches: []Match{}, Findings: []Finding{}}
	}

	matches := Scan(text, d.activeRules(opts))
	matches = dropIgnored(matches, opts.Ignore)

	result := ScanResult{
		Original:   text,
		Matches:    matches,
		MaskedText: Mask(text, matches),
		Findings:   summarize(matches),
	}

	for _, f := range result.Findings {
		d.logger.Debug("PII detected and masked",
			zap.String("category", string(f.Category)),
			zap.Int("count", f.Count),
		)
	}

	return result
}

// Analyze returns the unique detected values for operator review, in
// first-seen order.
func (d *Detector) Analyze(text string, opts Options) []ReviewItem {
	items := make([]ReviewItem, 0)
	if !d.config.Enabled {
		return items
	}

	seen := make(map[string]bool)
	for _, m := range Scan(text, d.activeRules(opts)) {
		if seen[m.Text] {
			continue
		}
		seen[m.Text] = true
		items = append(items, ReviewItem{Category: m.Category, Value: m.Text})
	}

	return items
}

// MaskFunc returns a function that masks a single text fragment with the
// given options. Used by the file rewriters, which walk document parts
// fragment by fragment.
func (d *Detector) MaskFunc(opts Options) func(string) string {
	return func(text string) string {
		return d.ScanText(text, opts).MaskedText
	}
}

// EnabledCategories returns the configured categories in rule order.
func (d *Detector) EnabledCategories() []Category {
	enabled := make([]Category, 0, len(d.rules))
	for _, rule := range d.rules {
		if d.enabled[rule.Category] {
			enabled = append(enabled, rule.Category)
		}
	}
	return enabled
}

// dropIgnored removes matches whose exact text the operator chose to
// keep.
func dropIgnored(matches []Match, ignore []string) []Match {
	if len(ignore) == 0 {
		return matches
	}

	ignored := make(map[string]bool, len(ignore))
	for _, v := range ignore {
		ignored[v] = true
	}

	kept := matches[:0:0]
	for _, m := range matches {
		if !ignored[m.Text] {
			kept = append(kept, m)
		}
	}
	return kept
}

// summarize counts retained (post-overlap-resolution) matches per
// category, in rule order.
func summarize(matches []Match) []Finding {
	counts := make(map[Category]int)
	for _, m := range resolveOverlaps(matches) {
		counts[m.Category]++
	}

	findings := make([]Finding, 0, len(counts))
	for _, rule := range defaultRules {
		if n := counts[rule.Category]; n > 0 {
			findings = append(findings, Finding{Category: rule.Category, Token: rule.Token, Count: n})
		}
	}
	return findings
}
