// Package engine drafts staff-facing text: full descriptions for tasks,
// meetings and departments, and inline completions while typing. It is pure
// apart from the clock used to vary regenerated wordings.
package engine

import "time"

type Engine struct {
	corpus   *Corpus
	selector Selector
	subjects SubjectExtractor
}

type Option func(*Engine)

// WithClock replaces the time source used for regenerate seeds and shuffles.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.selector = NewSelector(now)
	}
}

func New(corpus *Corpus, opts ...Option) *Engine {
	e := &Engine{
		corpus:   corpus,
		selector: NewSelector(time.Now),
		subjects: NewSubjectExtractor(corpus.actionWords),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Corpus() *Corpus { return e.corpus }

func (e *Engine) ExtractSubject(title string) string {
	return e.subjects.Extract(title)
}

func (e *Engine) DetectTaskType(title string) string {
	return e.corpus.category(CategoryTask).classifier.Classify(title)
}

func (e *Engine) DetectMeetingType(title string) string {
	return e.corpus.category(CategoryMeeting).classifier.Classify(title)
}

func (e *Engine) DetectDepartmentType(name string) string {
	return e.corpus.category(CategoryDepartment).classifier.Classify(name)
}
