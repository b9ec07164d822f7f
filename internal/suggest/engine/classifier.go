package engine

import "strings"

// Rule binds a subtype to the keywords that select it.
type Rule struct {
	Subtype  string
	Keywords []string
}

// Classifier is a first-match keyword scan. Rule order and keyword order are
// both significant: the first keyword found as a substring wins.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) Classifier {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(kw)
			if strings.TrimSpace(kw) == "" {
				continue
			}
			kws = append(kws, kw)
		}
		out = append(out, Rule{Subtype: r.Subtype, Keywords: kws})
	}
	return Classifier{rules: out}
}

// Classify returns the subtype of the first matching keyword, or
// DefaultSubtype when nothing matches.
func (c Classifier) Classify(input string) string {
	lower := strings.ToLower(input)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Subtype
			}
		}
	}
	return DefaultSubtype
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
