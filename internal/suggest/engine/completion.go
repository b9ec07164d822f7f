package engine

import (
	"strings"
	"unicode/utf8"
)

const (
	// completionWindow is how many trailing characters are matched against
	// triggers.
	completionWindow = 30
	// nearEndSlack is how many characters may follow a trigger inside the
	// window for the near-end tier to accept it.
	nearEndSlack = 5
	// minPartialWordLen gates the partial-word tier on both the input and
	// the word being typed.
	minPartialWordLen = 3
	// minFallbackLen is the input length at which canned closings kick in.
	minFallbackLen = 15
)

// Complete proposes a continuation for partially typed text. Tiers are tried
// in order and the first match wins; the emitted fragment is appended
// verbatim.
func (e *Engine) Complete(text, fieldType string, category Category) Completion {
	if strings.TrimSpace(text) == "" {
		return Completion{FullText: text, Strategy: StrategyNone}
	}

	triggers := e.corpus.Triggers(fieldType)
	lower := strings.ToLower(text)
	window := lastRunes(lower, completionWindow)

	fragment, strategy, confidence := "", StrategyNone, 0.0
	if f, ok := matchExactSuffix(window, triggers); ok {
		fragment, strategy, confidence = f, StrategyExactSuffix, confidenceExactSuffix
	} else if f, ok := matchPartialWord(lower, triggers); ok {
		fragment, strategy, confidence = f, StrategyPartialWord, confidencePartialWord
	} else if f, ok := matchNearEnd(window, triggers); ok {
		fragment, strategy, confidence = f, StrategyNearEnd, confidenceNearEnd
	} else if f, ok := matchLastWord(text, lower, triggers); ok {
		fragment, strategy, confidence = f, StrategyLastWord, confidenceLastWord
	} else if utf8.RuneCountInString(text) >= minFallbackLen {
		fragment, strategy, confidence = e.fallbackFragment(lower, category), StrategyFallback, confidenceFallback
	}

	return Completion{
		Completion: fragment,
		FullText:   text + fragment,
		Confidence: confidence,
		Strategy:   strategy,
	}
}

func matchExactSuffix(window string, triggers []Trigger) (string, bool) {
	for _, t := range triggers {
		if strings.HasSuffix(window, t.Phrase) {
			return t.Fragment, true
		}
	}
	return "", false
}

// matchPartialWord completes the word being typed from a trigger's first word
// and continues with that trigger's fragment.
func matchPartialWord(lower string, triggers []Trigger) (string, bool) {
	if utf8.RuneCountInString(lower) < minPartialWordLen {
		return "", false
	}
	words := strings.Fields(lower)
	if len(words) == 0 {
		return "", false
	}
	last := words[len(words)-1]
	if utf8.RuneCountInString(last) < minPartialWordLen {
		return "", false
	}
	for _, t := range triggers {
		first := firstWord(t.Phrase)
		if strings.HasPrefix(first, last) {
			return first[len(last):] + t.Fragment, true
		}
	}
	return "", false
}

// matchNearEnd accepts a trigger anywhere in the window as long as its last
// occurrence ends no more than nearEndSlack characters before the cursor.
func matchNearEnd(window string, triggers []Trigger) (string, bool) {
	for _, t := range triggers {
		idx := strings.LastIndex(window, t.Phrase)
		if idx < 0 {
			continue
		}
		if utf8.RuneCountInString(window[idx+len(t.Phrase):]) <= nearEndSlack {
			return t.Fragment, true
		}
	}
	return "", false
}

// matchLastWord fires only right after a completed word, i.e. when the raw
// text ends with a space.
func matchLastWord(text, lower string, triggers []Trigger) (string, bool) {
	if !strings.HasSuffix(text, " ") {
		return "", false
	}
	words := strings.Fields(lower)
	if len(words) == 0 {
		return "", false
	}
	last := words[len(words)-1]
	for _, t := range triggers {
		if strings.HasPrefix(firstWord(t.Phrase), last) {
			return t.Fragment, true
		}
	}
	return "", false
}

func (e *Engine) fallbackFragment(lower string, category Category) string {
	fb, ok := e.corpus.fallbacks[category]
	if !ok {
		fb = e.corpus.fallbacks[CategoryGeneral]
	}
	for _, r := range fb.rules {
		if containsAny(lower, r.contains) {
			return r.fragment
		}
	}
	return fb.def
}

func firstWord(phrase string) string {
	if f := strings.Fields(phrase); len(f) > 0 {
		return f[0]
	}
	return phrase
}

func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}
