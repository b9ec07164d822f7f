package engine

import (
	"strings"
	"unicode/utf8"
)

// minSubjectTokenLen is the shortest token kept in a subject; anything of
// two characters or fewer is dropped.
const minSubjectTokenLen = 3

// SubjectExtractor reduces a title to the phrase templates are filled with.
type SubjectExtractor struct {
	actionWords map[string]struct{}
}

func NewSubjectExtractor(actionWords map[string]struct{}) SubjectExtractor {
	return SubjectExtractor{actionWords: actionWords}
}

// Extract lower-cases the title, drops action verbs and short tokens, and
// rejoins the rest. When nothing survives the original title is returned.
func (s SubjectExtractor) Extract(title string) string {
	words := strings.Fields(strings.ToLower(title))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, isAction := s.actionWords[w]; isAction {
			continue
		}
		if utf8.RuneCountInString(w) < minSubjectTokenLen {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return title
	}
	return strings.Join(kept, " ")
}
