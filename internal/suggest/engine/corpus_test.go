package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddedCorpus(t *testing.T) string {
	t.Helper()
	data, err := corpusFS.ReadFile(corpusFile)
	require.NoError(t, err)
	return string(data)
}

func TestDefaultCorpusLoads(t *testing.T) {
	c, err := DefaultCorpus()
	require.NoError(t, err)

	for _, cat := range []Category{CategoryTask, CategoryMeeting, CategoryDepartment} {
		sets := c.Templates(cat)
		require.NotEmpty(t, sets, cat)
		assert.Equal(t, DefaultSubtype, sets[len(sets)-1].Subtype)
	}
	assert.Equal(t, "please ", c.Triggers("description")[3].Phrase)
	assert.Equal(t, c.Triggers("description"), c.Triggers("unknown"))
	assert.Equal(t, "meet", c.Triggers("Title")[12].Phrase)
}

func TestLoadCorpusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(embeddedCorpus(t)), 0o644))

	c, err := LoadCorpusFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Templates(CategoryMeeting), 9)

	def, err := LoadCorpusFile("  ")
	require.NoError(t, err)
	want, _ := DefaultCorpus()
	assert.Same(t, want, def)

	_, err = LoadCorpusFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadCorpusValidation(t *testing.T) {
	base := embeddedCorpus(t)

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			data:    "categories: [",
			wantErr: "parse corpus",
		},
		{
			name:    "missing categories",
			data:    "action_words: [review]\n",
			wantErr: `category "task" is missing`,
		},
		{
			name:    "template without placeholder",
			data:    strings.Replace(base, "Review and provide comprehensive feedback on {subject}.", "Review and provide comprehensive feedback.", 1),
			wantErr: "exactly once",
		},
		{
			name:    "missing general fallback",
			data:    strings.Replace(base, "  general:\n    default:", "  other:\n    default:", 1),
			wantErr: "fallbacks.general is required",
		},
		{
			name:    "duration sentence without minutes",
			data:    strings.Replace(base, "{minutes}", "thirty", 1),
			wantErr: "{minutes}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCorpus([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelectorSeeds(t *testing.T) {
	assert.Equal(t, TextSeed("Review Q3 Budget"), TextSeed("Review Q3 Budget"))
	assert.Less(t, TextSeed("anything at all"), uint64(seedRange))

	s := NewSelector(tickingClock(123))
	templates := []string{"a", "b", "c", "d"}
	pick := s.Select(templates, "Review Q3 Budget", false)
	for i := 0; i < 5; i++ {
		assert.Equal(t, pick, s.Select(templates, "Review Q3 Budget", false))
	}
	assert.Empty(t, s.Select(nil, "x", true))
	assert.Empty(t, s.Enhancer(nil))
}

func TestCorpusFieldType(t *testing.T) {
	c, err := DefaultCorpus()
	require.NoError(t, err)

	tests := map[string]string{
		"title":        "title",
		" Agenda ":     "agenda",
		"description":  "description",
		"":             "description",
		"notes":        "description",
		"junk-1234567": "description",
	}
	for in, want := range tests {
		assert.Equal(t, want, c.FieldType(in), "field %q", in)
	}
	assert.Equal(t, c.Triggers("description"), c.Triggers("junk-1234567"))
}
