package privacy

import "strings"

var tokenByCategory = func() map[Category]string {
	m := make(map[Category]string, len(defaultRules))
	for _, rule := range defaultRules {
		m[rule.Category] = rule.Token
	}
	return m
}()

// TokenFor returns the mask token for a category. Unknown categories get
// the SSN-style generic bracket form so a mask is never silently empty.
func TokenFor(category Category) string {
	if token, ok := tokenByCategory[category]; ok {
		return token
	}
	return "[MASKED]"
}

// Mask produces a copy of text with every retained match span replaced by
// its category token. Matches must be ordered as produced by Scan. When
// two spans overlap, the later-starting one is dropped: the leftmost
// match wins, and at equal starts the match ordering (rule-declaration
// order) already decided the winner. Masking an empty match set returns
// text unchanged.
func Mask(text string, matches []Match) string {
	if len(matches) == 0 {
		return text
	}

	retained := resolveOverlaps(matches)

	var b strings.Builder
	b.Grow(len(text))

	pos := 0
	for _, m := range retained {
		b.WriteString(text[pos:m.Start])
		b.WriteString(TokenFor(m.Category))
		pos = m.End
	}
	b.WriteString(text[pos:])

	return b.String()
}

// resolveOverlaps keeps only the first non-overlapping match per region.
// Input must be sorted by start offset with rule-order tie-break.
func resolveOverlaps(matches []Match) []Match {
	retained := matches[:0:0]
	lastEnd := 0

	for _, m := range matches {
		if len(retained) > 0 && m.Start < lastEnd {
			continue
		}
		retained = append(retained, m)
		lastEnd = m.End
	}

	return retained
}
