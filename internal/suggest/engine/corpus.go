package engine

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var corpusFS embed.FS

const corpusFile = "corpus.yaml"

const completionFieldDefault = "description"

type yamlCorpus struct {
	Corpus           string                   `yaml:"corpus"`
	Version          int                      `yaml:"version"`
	ActionWords      []string                 `yaml:"action_words"`
	Dispatch         yamlDispatch             `yaml:"dispatch"`
	Enhancers        []string                 `yaml:"enhancers"`
	Priority         yamlPriority             `yaml:"priority"`
	DurationSentence string                   `yaml:"duration_sentence"`
	Categories       map[string]yamlCategory  `yaml:"categories"`
	Completions      map[string][]yamlTrigger `yaml:"completions"`
	Fallbacks        map[string]yamlFallback  `yaml:"fallbacks"`
}

type yamlDispatch struct {
	Meeting    []string `yaml:"meeting"`
	Department []string `yaml:"department"`
}

type yamlPriority struct {
	UrgentPrefix string `yaml:"urgent_prefix"`
	UrgentSuffix string `yaml:"urgent_suffix"`
	HighSuffix   string `yaml:"high_suffix"`
}

type yamlCategory struct {
	Placeholder string             `yaml:"placeholder"`
	Keywords    []yamlKeywordRule  `yaml:"keywords"`
	Templates   []yamlTemplateList `yaml:"templates"`
}

type yamlKeywordRule struct {
	Subtype  string   `yaml:"subtype"`
	Keywords []string `yaml:"keywords"`
}

type yamlTemplateList struct {
	Subtype    string   `yaml:"subtype"`
	Variations []string `yaml:"variations"`
}

type yamlTrigger struct {
	Trigger    string `yaml:"trigger"`
	Completion string `yaml:"completion"`
}

type yamlFallback struct {
	Rules   []yamlFallbackRule `yaml:"rules"`
	Default string             `yaml:"default"`
}

type yamlFallbackRule struct {
	Contains   []string `yaml:"contains"`
	Completion string   `yaml:"completion"`
}

// TemplateSet is the ordered list of wordings for one subtype.
type TemplateSet struct {
	Subtype    string
	Variations []string
}

// Trigger maps a lower-case phrase to the fragment appended after it.
type Trigger struct {
	Phrase   string
	Fragment string
}

type fallbackRule struct {
	contains []string
	fragment string
}

type fallback struct {
	rules []fallbackRule
	def   string
}

type categoryCorpus struct {
	placeholder string
	classifier  Classifier
	templates   []TemplateSet
	bySubtype   map[string]int
}

// Corpus is the read-only template and trigger data behind the engine. It is
// built once and shared by every request.
type Corpus struct {
	actionWords      map[string]struct{}
	meetingHints     []string
	departmentHints  []string
	enhancers        []string
	urgentPrefix     string
	urgentSuffix     string
	highSuffix       string
	durationSentence string

	categories  map[Category]*categoryCorpus
	completions map[string][]Trigger
	fallbacks   map[Category]fallback
}

var (
	defaultOnce   sync.Once
	defaultCorpus *Corpus
	defaultErr    error
)

// DefaultCorpus returns the embedded corpus, parsed on first use.
func DefaultCorpus() (*Corpus, error) {
	defaultOnce.Do(func() {
		data, err := corpusFS.ReadFile(corpusFile)
		if err != nil {
			defaultErr = fmt.Errorf("read embedded corpus: %w", err)
			return
		}
		defaultCorpus, defaultErr = LoadCorpus(data)
	})
	return defaultCorpus, defaultErr
}

// LoadCorpusFile parses a corpus from disk. An empty path selects the
// embedded corpus.
func LoadCorpusFile(path string) (*Corpus, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultCorpus()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	c, err := LoadCorpus(data)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return c, nil
}

func LoadCorpus(data []byte) (*Corpus, error) {
	var raw yamlCorpus
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if err := validateCorpus(&raw); err != nil {
		return nil, err
	}

	c := &Corpus{
		actionWords:      make(map[string]struct{}, len(raw.ActionWords)),
		meetingHints:     lowerAll(raw.Dispatch.Meeting),
		departmentHints:  lowerAll(raw.Dispatch.Department),
		enhancers:        append([]string(nil), raw.Enhancers...),
		urgentPrefix:     raw.Priority.UrgentPrefix,
		urgentSuffix:     strings.TrimSpace(raw.Priority.UrgentSuffix),
		highSuffix:       strings.TrimSpace(raw.Priority.HighSuffix),
		durationSentence: strings.TrimSpace(raw.DurationSentence),
		categories:       map[Category]*categoryCorpus{},
		completions:      map[string][]Trigger{},
		fallbacks:        map[Category]fallback{},
	}
	for _, w := range raw.ActionWords {
		c.actionWords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	for name, yc := range raw.Categories {
		cat := Category(strings.ToLower(strings.TrimSpace(name)))
		cc := &categoryCorpus{
			placeholder: yc.Placeholder,
			templates:   make([]TemplateSet, 0, len(yc.Templates)),
			bySubtype:   make(map[string]int, len(yc.Templates)),
		}
		rules := make([]Rule, 0, len(yc.Keywords))
		for _, r := range yc.Keywords {
			rules = append(rules, Rule{Subtype: strings.TrimSpace(r.Subtype), Keywords: r.Keywords})
		}
		cc.classifier = NewClassifier(rules)
		for _, t := range yc.Templates {
			subtype := strings.TrimSpace(t.Subtype)
			cc.bySubtype[subtype] = len(cc.templates)
			cc.templates = append(cc.templates, TemplateSet{
				Subtype:    subtype,
				Variations: append([]string(nil), t.Variations...),
			})
		}
		c.categories[cat] = cc
	}

	for field, triggers := range raw.Completions {
		out := make([]Trigger, 0, len(triggers))
		for _, t := range triggers {
			out = append(out, Trigger{Phrase: strings.ToLower(t.Trigger), Fragment: t.Completion})
		}
		c.completions[strings.ToLower(strings.TrimSpace(field))] = out
	}

	for name, fb := range raw.Fallbacks {
		out := fallback{def: fb.Default}
		for _, r := range fb.Rules {
			out.rules = append(out.rules, fallbackRule{contains: lowerAll(r.Contains), fragment: r.Completion})
		}
		c.fallbacks[Category(strings.ToLower(strings.TrimSpace(name)))] = out
	}

	return c, nil
}

func validateCorpus(raw *yamlCorpus) error {
	if raw == nil {
		return errors.New("missing corpus")
	}
	if len(raw.ActionWords) == 0 {
		return errors.New("action_words must not be empty")
	}
	for _, cat := range []Category{CategoryTask, CategoryMeeting, CategoryDepartment} {
		yc, ok := raw.Categories[string(cat)]
		if !ok {
			return fmt.Errorf("category %q is missing", cat)
		}
		if strings.TrimSpace(yc.Placeholder) == "" {
			return fmt.Errorf("category %q: placeholder is required", cat)
		}
		for i, r := range yc.Keywords {
			if strings.TrimSpace(r.Subtype) == "" {
				return fmt.Errorf("category %q: keyword rule %d has no subtype", cat, i)
			}
			if len(r.Keywords) == 0 {
				return fmt.Errorf("category %q: subtype %q has no keywords", cat, r.Subtype)
			}
		}
		seen := map[string]bool{}
		for _, t := range yc.Templates {
			subtype := strings.TrimSpace(t.Subtype)
			if subtype == "" {
				return fmt.Errorf("category %q: template list without subtype", cat)
			}
			if seen[subtype] {
				return fmt.Errorf("category %q: duplicate subtype %q", cat, subtype)
			}
			seen[subtype] = true
			if len(t.Variations) == 0 {
				return fmt.Errorf("category %q: subtype %q has no variations", cat, subtype)
			}
			for _, v := range t.Variations {
				if n := strings.Count(v, yc.Placeholder); n != 1 {
					return fmt.Errorf("category %q: subtype %q: template must contain %s exactly once, found %d", cat, subtype, yc.Placeholder, n)
				}
			}
		}
		if !seen[DefaultSubtype] {
			return fmt.Errorf("category %q: %q subtype is required", cat, DefaultSubtype)
		}
	}
	if len(raw.Completions[completionFieldDefault]) == 0 {
		return fmt.Errorf("completions.%s is required", completionFieldDefault)
	}
	for field, triggers := range raw.Completions {
		for i, t := range triggers {
			if strings.TrimSpace(t.Trigger) == "" {
				return fmt.Errorf("completions.%s[%d]: trigger is required", field, i)
			}
		}
	}
	for _, cat := range []Category{CategoryTask, CategoryMeeting, CategoryDepartment, CategoryGeneral} {
		if _, ok := raw.Fallbacks[string(cat)]; !ok {
			return fmt.Errorf("fallbacks.%s is required", cat)
		}
	}
	if len(raw.Priority.UrgentPrefix) == 0 {
		return errors.New("priority.urgent_prefix is required")
	}
	if !strings.Contains(raw.DurationSentence, "{minutes}") {
		return errors.New("duration_sentence must contain {minutes}")
	}
	return nil
}

func (c *Corpus) category(cat Category) *categoryCorpus {
	if cc, ok := c.categories[cat]; ok {
		return cc
	}
	return c.categories[CategoryTask]
}

// FieldType maps a requested field onto the completion table that serves it.
// Unknown fields resolve to "description".
func (c *Corpus) FieldType(fieldType string) string {
	ft := strings.ToLower(strings.TrimSpace(fieldType))
	if _, ok := c.completions[ft]; ok {
		return ft
	}
	return completionFieldDefault
}

// Triggers returns the completion table for a field type, falling back to
// the description table for unknown fields.
func (c *Corpus) Triggers(fieldType string) []Trigger {
	return c.completions[c.FieldType(fieldType)]
}

// Templates returns the template lists of a category in corpus order.
func (c *Corpus) Templates(cat Category) []TemplateSet {
	return c.category(cat).templates
}

func (cc *categoryCorpus) variations(subtype string) []string {
	if i, ok := cc.bySubtype[subtype]; ok {
		return cc.templates[i].Variations
	}
	return cc.templates[cc.bySubtype[DefaultSubtype]].Variations
}

func (cc *categoryCorpus) fill(template, value string) string {
	return strings.ReplaceAll(template, cc.placeholder, value)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
