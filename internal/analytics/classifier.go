package analytics

import (
	"strings"
	"unicode/utf8"

	"spendwise/internal/catalog"
)

const (
	minDescriptionLen = 2
	maxSuggestions    = 5
	shortDescription  = 20
)

// Prediction is the classifier's best guess for a description.
// The zero value means "no prediction".
type Prediction struct {
	Category   string   `json:"category"`
	Confidence int      `json:"confidence"`
	Keywords   []string `json:"keywords"`
	Color      string   `json:"color"`
}

// Classifier maps free-text descriptions to categories by keyword matching.
type Classifier struct {
	rules []catalog.Rule
	other catalog.Rule
}

// NewClassifier builds a classifier over rules. Declaration order breaks ties.
func NewClassifier(rules []catalog.Rule) *Classifier {
	return &Classifier{rules: rules, other: catalog.OtherRule}
}

// Predict returns the category whose keywords match the description most often.
func (c *Classifier) Predict(description string) Prediction {
	desc := strings.ToLower(strings.TrimSpace(description))
	length := utf8.RuneCountInString(desc)
	if length < minDescriptionLen {
		return Prediction{}
	}

	best := -1
	var found []string
	for i, rule := range c.rules {
		var matched []string
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		// Strictly greater: the first declared rule wins a tie.
		if len(matched) > 0 && len(matched) > len(found) {
			best, found = i, matched
		}
	}

	if best < 0 {
		return Prediction{
			Category: c.other.Name,
			Keywords: []string{},
			Color:    c.other.Color,
		}
	}
	return Prediction{
		Category:   c.rules[best].Name,
		Confidence: Confidence(len(found), length),
		Keywords:   found,
		Color:      c.rules[best].Color,
	}
}

// Confidence scores a match on a 0-100 scale: 25 per keyword, plus 10 for
// a short description and 10 for more than one keyword.
func Confidence(matches, descriptionLen int) int {
	if matches <= 0 {
		return 0
	}
	score := matches * 25
	if descriptionLen < shortDescription {
		score += 10
	}
	if matches >= 2 {
		score += 10
	}
	return min(score, 100)
}

// Suggest returns up to five keywords containing partial, in catalog order.
func (c *Classifier) Suggest(partial string) []string {
	p := strings.ToLower(strings.TrimSpace(partial))
	if utf8.RuneCountInString(p) < minDescriptionLen {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(kw)
			if !strings.Contains(kw, p) {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
			if len(out) == maxSuggestions {
				return out
			}
		}
	}
	return out
}

// Categories lists the rule names the classifier can return, "Other" last.
func (c *Classifier) Categories() []catalog.Rule {
	out := make([]catalog.Rule, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, catalog.Rule{Name: r.Name, Color: r.Color})
	}
	return append(out, catalog.Rule{Name: c.other.Name, Color: c.other.Color})
}
