package privacy

import (
	"strings"
	"testing"
)

func TestMask(t *testing.T) {
	rules := DefaultRules()

	t.Run("EmptyMatchSetIsIdentity", func(t *testing.T) {
		text := "no sensitive content in this sentence"
		masked := Mask(text, Scan(text, rules))
		if masked != text {
			t.Errorf("Expected identity, got %q", masked)
		}
	})

	t.Run("SingleEmail", func(t *testing.T) {
		text := "contact: a@b.co"
		masked := Mask(text, Scan(text, rules))
		if masked != "contact: [EMAIL MASKED]" {
			t.Errorf("Unexpected masked text: %q", masked)
		}
	})

	t.Run("CreditCard", func(t *testing.T) {
		text := "Card: 4111-1111-1111-1111"
		masked := Mask(text, Scan(text, rules))
		if masked != "Card: [CREDIT CARD MASKED]" {
			t.Errorf("Unexpected masked text: %q", masked)
		}
	})

	t.Run("SSN", func(t *testing.T) {
		text := "SSN: 123-45-6789"
		masked := Mask(text, Scan(text, rules))
		if masked != "SSN: [SSN MASKED]" {
			t.Errorf("Unexpected masked text: %q", masked)
		}
	})

	t.Run("DigitRunMaskedOnce", func(t *testing.T) {
		// One mask token for the whole region, never two.
		text := "account 4111111111111111 end"
		masked := Mask(text, Scan(text, rules))
		if masked != "account [CREDIT CARD MASKED] end" {
			t.Errorf("Unexpected masked text: %q", masked)
		}
		if n := strings.Count(masked, "MASKED"); n != 1 {
			t.Errorf("Expected exactly 1 mask token, got %d", n)
		}
	})

	t.Run("OverlapKeepsLeftmostThenRuleOrder", func(t *testing.T) {
		text := "2125550176@example.com"
		masked := Mask(text, Scan(text, rules))
		if masked != "[EMAIL MASKED]" {
			t.Errorf("Expected email to win the overlap, got %q", masked)
		}
	})

	t.Run("OverlapOnConstructedSpans", func(t *testing.T) {
		// Synthetic overlapping spans exercise the resolution policy
		// independently of what the current patterns can produce.
		text := "0123456789abcdef"
		matches := []Match{
			{Category: CategoryCreditCard, Start: 2, End: 10, Text: text[2:10]},
			{Category: CategorySSN, Start: 6, End: 14, Text: text[6:14]},
		}
		masked := Mask(text, matches)
		if masked != "01[CREDIT CARD MASKED]abcdef" {
			t.Errorf("Unexpected masked text: %q", masked)
		}
	})

	t.Run("ChainedOverlaps", func(t *testing.T) {
		// The third span starts after the first ends, so dropping the
		// second must not suppress the third.
		text := strings.Repeat("x", 12)
		matches := []Match{
			{Category: CategoryEmail, Start: 0, End: 4},
			{Category: CategoryPhone, Start: 2, End: 8},
			{Category: CategorySSN, Start: 5, End: 9},
		}
		masked := Mask(text, matches)
		if masked != "[EMAIL MASKED]x[SSN MASKED]xxx" {
			t.Errorf("Unexpected masked text: %q", masked)
		}
	})

	t.Run("LengthChangesOnlyWithMatches", func(t *testing.T) {
		clean := "no personal data here"
		if masked := Mask(clean, Scan(clean, rules)); len(masked) != len(clean) {
			t.Errorf("Length changed without matches: %d != %d", len(masked), len(clean))
		}

		dirty := "mail a@b.co now"
		if masked := Mask(dirty, Scan(dirty, rules)); len(masked) == len(dirty) {
			t.Errorf("Length should differ when matches exist")
		}
	})

	t.Run("MaskingIsIdempotent", func(t *testing.T) {
		text := "mail a@b.co or call 212-555-0176, ssn 123-45-6789"
		once := Mask(text, Scan(text, rules))
		twice := Mask(once, Scan(once, rules))
		if once != twice {
			t.Errorf("Masking not idempotent:\n once: %q\ntwice: %q", once, twice)
		}
	})

	t.Run("MultipleCategories", func(t *testing.T) {
		text := "a@b.co / 212-555-0176 / 4111 1111 1111 1111 / 123-45-6789"
		masked := Mask(text, Scan(text, rules))
		want := "[EMAIL MASKED] / [PHONE MASKED] / [CREDIT CARD MASKED] / [SSN MASKED]"
		if masked != want {
			t.Errorf("Expected %q, got %q", want, masked)
		}
	})
}
