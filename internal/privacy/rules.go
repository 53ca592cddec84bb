package privacy

import "regexp"

// Mask tokens substituted for detected spans. Tokens are not
// length-preserving and retain nothing of the original value.
const (
	TokenEmail      = "[EMAIL MASKED]"
	TokenPhone      = "[PHONE MASKED]"
	TokenCreditCard = "[CREDIT CARD MASKED]"
	TokenSSN        = "[SSN MASKED]"
)

var defaultRules = []DetectionRule{
	{
		Category: CategoryEmail,
		Pattern:  regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Token:    TokenEmail,
	},
	{
		// NANP numbers: optional +1/1 country code with or without a
		// separator, [2-9] area code and exchange, separators limited to
		// space, dot, hyphen, parentheses. The boundary anchors the whole
		// number, so a separator-free country code still matches and the
		// rule cannot fire inside a longer digit run.
		Category: CategoryPhone,
		Pattern:  regexp.MustCompile(`\b(?:\+?1[-. ]?)?\(?[2-9][0-9]{2}\)?[-. ]?[2-9][0-9]{2}[-. ]?[0-9]{4}\b`),
		Token:    TokenPhone,
	},
	{
		// Four groups of four digits with at most one space or hyphen
		// between groups; also matches 16 contiguous digits.
		Category: CategoryCreditCard,
		Pattern:  regexp.MustCompile(`\b(?:\d{4}[- ]?){3}\d{4}\b`),
		Token:    TokenCreditCard,
	},
	{
		Category: CategorySSN,
		Pattern:  regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`),
		Token:    TokenSSN,
	},
}

// DefaultRules returns the fixed rule table in declaration order. The
// returned slice is shared and must be treated as read-only.
func DefaultRules() []DetectionRule {
	return defaultRules
}

// Categories returns all known categories in rule-declaration order.
func Categories() []Category {
	cats := make([]Category, len(defaultRules))
	for i, rule := range defaultRules {
		cats[i] = rule.Category
	}
	return cats
}
