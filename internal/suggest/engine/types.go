package engine

import "strings"

type Category string

const (
	CategoryTask       Category = "task"
	CategoryMeeting    Category = "meeting"
	CategoryDepartment Category = "department"
	CategoryGeneral    Category = "general"
)

// DefaultSubtype is the fallback bucket every category corpus must define.
const DefaultSubtype = "default"

// ParseCategory maps a wire value onto a Category. Unknown values resolve to
// CategoryGeneral so callers never have to reject them.
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryTask, CategoryMeeting, CategoryDepartment:
		return c
	default:
		return CategoryGeneral
	}
}

type SuggestRequest struct {
	Title    string
	Category Category
	// Context carries optional hints from the form: "priority" (urgent|high)
	// for tasks and "duration" (minutes) for meetings.
	Context    map[string]any
	Regenerate bool
}

type Suggestion struct {
	Text         string
	Alternatives []string
	Confidence   float64

	// Category is the category after general dispatch; Subtype is the bucket
	// the classifier picked within it.
	Category Category
	Subtype  string
}

type Alternative struct {
	Subtype     string
	Description string
}

// Strategy names the completion tier that produced a result.
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyExactSuffix Strategy = "exact_suffix"
	StrategyPartialWord Strategy = "partial_word"
	StrategyNearEnd     Strategy = "near_end"
	StrategyLastWord    Strategy = "last_word"
	StrategyFallback    Strategy = "fallback"
)

const (
	confidenceExactSuffix = 0.95
	confidencePartialWord = 0.85
	confidenceNearEnd     = 0.75
	confidenceLastWord    = 0.65
	confidenceFallback    = 0.55

	confidenceClassified = 0.85
	confidenceDefault    = 0.7
)

type Completion struct {
	Completion string
	FullText   string
	Confidence float64
	Strategy   Strategy
}
