package privacy

import "regexp"

// Category identifies a class of sensitive data. Declaration order of the
// category constants is the tie-break order for matches that start at the
// same offset.
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategoryCreditCard Category = "credit_card"
	CategorySSN        Category = "ssn"
)

// DetectionRule binds a category to its pattern and mask token. Rules are
// built once at startup and never mutated afterwards.
type DetectionRule struct {
	Category Category
	Pattern  *regexp.Regexp
	Token    string
}

// Match is a single detected span in a text buffer. Offsets are byte
// offsets, [Start, End).
type Match struct {
	Category Category `json:"category"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Text     string   `json:"-"` // never serialized
}

// Finding summarizes detections of one category for reporting. It carries
// counts only, so it is safe to log and broadcast.
type Finding struct {
	Category Category `json:"category"`
	Token    string   `json:"token"`
	Count    int      `json:"count"`
}

// ScanResult is the outcome of running one text buffer through the
// detector. Request-scoped; nothing in it survives the response.
type ScanResult struct {
	Original   string    `json:"-"` // never serialized
	Matches    []Match   `json:"-"`
	MaskedText string    `json:"maskedText"`
	Findings   []Finding `json:"findings"`
}
