package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	maxSuggestionAlternatives = 3
	maxAlternatives           = 5
)

type poolEntry struct {
	subtype string
	text    string
}

// Suggest drafts a full description for a title.
func (e *Engine) Suggest(req SuggestRequest) Suggestion {
	cat := e.ResolveCategory(req.Category, req.Title)
	cc := e.corpus.category(cat)

	// Departments are filled with the name as typed; tasks and meetings with
	// the extracted subject. Classification always reads the raw title.
	subtype := cc.classifier.Classify(req.Title)
	value := e.fillValue(cat, req.Title)

	base := cc.fill(e.selector.Select(cc.variations(subtype), req.Title, req.Regenerate), value)
	text := base
	if req.Regenerate {
		if s := e.selector.Enhancer(e.corpus.enhancers); s != "" {
			text += " " + s
		}
	}

	switch cat {
	case CategoryTask:
		text = e.applyPriority(text, req.Context)
	case CategoryMeeting:
		text = e.applyDuration(text, req.Context)
	}

	confidence := confidenceDefault
	if subtype != DefaultSubtype {
		confidence = confidenceClassified
	}

	return Suggestion{
		Text:         text,
		Alternatives: e.pickAlternatives(cc, value, []string{base, text}),
		Confidence:   confidence,
		Category:     cat,
		Subtype:      subtype,
	}
}

// Alternatives returns up to five filled wordings drawn from every
// non-default subtype of the category, in shuffled order.
func (e *Engine) Alternatives(title string, category Category) []Alternative {
	cat := e.ResolveCategory(category, title)
	cc := e.corpus.category(cat)
	pool := e.shuffledPool(cc, e.fillValue(cat, title))
	if len(pool) > maxAlternatives {
		pool = pool[:maxAlternatives]
	}
	out := make([]Alternative, 0, len(pool))
	for _, p := range pool {
		out = append(out, Alternative{Subtype: p.subtype, Description: p.text})
	}
	return out
}

// ResolveCategory applies general dispatch: an unspecified category is
// routed by hint words in the title, defaulting to task handling.
func (e *Engine) ResolveCategory(category Category, title string) Category {
	switch category {
	case CategoryTask, CategoryMeeting, CategoryDepartment:
		return category
	}
	lower := strings.ToLower(title)
	switch {
	case containsAny(lower, e.corpus.meetingHints):
		return CategoryMeeting
	case containsAny(lower, e.corpus.departmentHints):
		return CategoryDepartment
	default:
		return CategoryTask
	}
}

func (e *Engine) fillValue(cat Category, title string) string {
	if cat == CategoryDepartment {
		return title
	}
	return e.subjects.Extract(title)
}

func (e *Engine) pickAlternatives(cc *categoryCorpus, value string, exclude []string) []string {
	seen := make(map[string]struct{}, len(exclude)+maxSuggestionAlternatives)
	for _, s := range exclude {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, maxSuggestionAlternatives)
	for _, p := range e.shuffledPool(cc, value) {
		if len(out) == maxSuggestionAlternatives {
			break
		}
		if _, dup := seen[p.text]; dup {
			continue
		}
		seen[p.text] = struct{}{}
		out = append(out, p.text)
	}
	return out
}

func (e *Engine) shuffledPool(cc *categoryCorpus, value string) []poolEntry {
	pool := make([]poolEntry, 0, len(cc.templates)*3)
	for _, ts := range cc.templates {
		if ts.Subtype == DefaultSubtype {
			continue
		}
		for _, v := range ts.Variations {
			pool = append(pool, poolEntry{subtype: ts.Subtype, text: cc.fill(v, value)})
		}
	}
	e.selector.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool
}

func (e *Engine) applyPriority(text string, ctx map[string]any) string {
	priority, _ := ctx["priority"].(string)
	switch priority {
	case "urgent":
		return e.corpus.urgentPrefix + text + " " + e.corpus.urgentSuffix
	case "high":
		return text + " " + e.corpus.highSuffix
	default:
		return text
	}
}

func (e *Engine) applyDuration(text string, ctx map[string]any) string {
	minutes, ok := durationMinutes(ctx["duration"])
	if !ok {
		return text
	}
	return text + " " + strings.ReplaceAll(e.corpus.durationSentence, "{minutes}", minutes)
}

// durationMinutes renders a context duration the way it was supplied. Zero,
// empty and anything that is neither a number nor a string counts as absent.
func durationMinutes(v any) (string, bool) {
	switch d := v.(type) {
	case nil:
		return "", false
	case float64:
		if d == 0 {
			return "", false
		}
		return strconv.FormatFloat(d, 'f', -1, 64), true
	case float32:
		return durationMinutes(float64(d))
	case int:
		if d == 0 {
			return "", false
		}
		return strconv.Itoa(d), true
	case int64:
		return durationMinutes(int(d))
	case json.Number:
		f, err := d.Float64()
		if err != nil {
			return "", false
		}
		return durationMinutes(f)
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}
