package privacy

import (
	"testing"

	"github.com/raaihank/docmask/internal/config"
	"github.com/raaihank/docmask/internal/logger"
)

func newTestDetector(t *testing.T, cfg config.PrivacyConfig) *Detector {
	t.Helper()
	d, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create detector: %v", err)
	}
	return d
}

func TestDetector(t *testing.T) {
	allOn := config.PrivacyConfig{Enabled: true, Detectors: []string{"all"}}

	t.Run("UnknownDetectorRejected", func(t *testing.T) {
		_, err := New(config.PrivacyConfig{Enabled: true, Detectors: []string{"passport"}}, logger.Nop())
		if err == nil {
			t.Error("Expected error for unknown detector")
		}
	})

	t.Run("EnabledCategoriesFollowConfig", func(t *testing.T) {
		d := newTestDetector(t, config.PrivacyConfig{Enabled: true, Detectors: []string{"email", "ssn"}})
		got := d.EnabledCategories()
		if len(got) != 2 || got[0] != CategoryEmail || got[1] != CategorySSN {
			t.Errorf("Unexpected enabled categories: %v", got)
		}
	})

	t.Run("DisabledPrivacyIsPassthrough", func(t *testing.T) {
		d := newTestDetector(t, config.PrivacyConfig{Enabled: false, Detectors: []string{"all"}})
		text := "mail a@b.co"
		result := d.ScanText(text, Options{})
		if result.MaskedText != text {
			t.Errorf("Expected passthrough, got %q", result.MaskedText)
		}
		if len(result.Findings) != 0 {
			t.Errorf("Expected no findings, got %d", len(result.Findings))
		}
	})

	t.Run("ScanTextMasksAndCounts", func(t *testing.T) {
		d := newTestDetector(t, allOn)
		result := d.ScanText("a@b.co and c@d.org, ssn 123-45-6789", Options{})

		if result.MaskedText != "[EMAIL MASKED] and [EMAIL MASKED], ssn [SSN MASKED]" {
			t.Errorf("Unexpected masked text: %q", result.MaskedText)
		}
		if len(result.Findings) != 2 {
			t.Fatalf("Expected 2 findings, got %d", len(result.Findings))
		}
		if result.Findings[0].Category != CategoryEmail || result.Findings[0].Count != 2 {
			t.Errorf("Unexpected first finding: %+v", result.Findings[0])
		}
		if result.Findings[1].Category != CategorySSN || result.Findings[1].Count != 1 {
			t.Errorf("Unexpected second finding: %+v", result.Findings[1])
		}
	})

	t.Run("RequestTogglesRestrictConfiguredSet", func(t *testing.T) {
		d := newTestDetector(t, allOn)
		opts := Options{Categories: map[Category]bool{CategorySSN: true}}
		result := d.ScanText("a@b.co ssn 123-45-6789", opts)
		if result.MaskedText != "a@b.co ssn [SSN MASKED]" {
			t.Errorf("Unexpected masked text: %q", result.MaskedText)
		}
	})

	t.Run("IgnoredValuesSurviveMasking", func(t *testing.T) {
		d := newTestDetector(t, allOn)
		opts := Options{Ignore: []string{"a@b.co"}}
		result := d.ScanText("keep a@b.co, mask c@d.org", opts)
		if result.MaskedText != "keep a@b.co, mask [EMAIL MASKED]" {
			t.Errorf("Unexpected masked text: %q", result.MaskedText)
		}
		if len(result.Findings) != 1 || result.Findings[0].Count != 1 {
			t.Errorf("Unexpected findings: %+v", result.Findings)
		}
	})

	t.Run("AnalyzeReturnsUniqueValues", func(t *testing.T) {
		d := newTestDetector(t, allOn)
		items := d.Analyze("a@b.co twice: a@b.co, and 212-555-0176", Options{})
		if len(items) != 2 {
			t.Fatalf("Expected 2 unique items, got %d", len(items))
		}
		if items[0].Category != CategoryEmail || items[0].Value != "a@b.co" {
			t.Errorf("Unexpected first item: %+v", items[0])
		}
		if items[1].Category != CategoryPhone || items[1].Value != "212-555-0176" {
			t.Errorf("Unexpected second item: %+v", items[1])
		}
	})

	t.Run("MaskFuncMatchesScanText", func(t *testing.T) {
		d := newTestDetector(t, allOn)
		maskFn := d.MaskFunc(Options{})
		text := "Card: 4111-1111-1111-1111"
		if got, want := maskFn(text), d.ScanText(text, Options{}).MaskedText; got != want {
			t.Errorf("MaskFunc diverged: %q vs %q", got, want)
		}
	})

	t.Run("OverlappingDigitRunCountedOnce", func(t *testing.T) {
		d := newTestDetector(t, allOn)
		result := d.ScanText("2125550176@example.com", Options{})
		if result.MaskedText != "[EMAIL MASKED]" {
			t.Errorf("Unexpected masked text: %q", result.MaskedText)
		}
		total := 0
		for _, f := range result.Findings {
			total += f.Count
		}
		if total != 1 {
			t.Errorf("Expected 1 retained finding, got %d", total)
		}
	})
}
