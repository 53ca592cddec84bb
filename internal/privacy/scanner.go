package privacy

import "sort"

// Scan locates every occurrence of the given rules in text. Matches of a
// single rule never overlap (left-to-right regex scan); matches of
// different rules may. The merged result is ordered by start offset
// ascending, ties broken by rule-declaration order.
//
// Scan is a pure function of its inputs and holds no state, so it is safe
// to call concurrently.
func Scan(text string, rules []DetectionRule) []Match {
	matches := make([]Match, 0)
	order := make(map[Category]int, len(rules))

	for i, rule := range rules {
		order[rule.Category] = i
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{
				Category: rule.Category,
				Start:    loc[0],
				End:      loc[1],
				Text:     text[loc[0]:loc[1]],
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return order[matches[i].Category] < order[matches[j].Category]
	})

	return matches
}
