package engine

import (
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
)

// seedRange bounds every seed so text-derived and clock-derived seeds share
// one space.
const seedRange = 10000

// Selector picks template wordings. First suggestions are seeded from the
// input text so they are stable; regenerate requests, shuffles and enhancer
// picks are seeded from the clock. Each call builds its own generator.
type Selector struct {
	now func() time.Time
}

func NewSelector(now func() time.Time) Selector {
	if now == nil {
		now = time.Now
	}
	return Selector{now: now}
}

// TextSeed derives the stable seed for an input text.
func TextSeed(key string) uint64 {
	return xxhash.Sum64String(key) % seedRange
}

// ClockSeed derives a seed from the current time at millisecond resolution.
func (s Selector) ClockSeed() uint64 {
	ms := s.now().UnixMilli()
	if ms < 0 {
		ms = -ms
	}
	return uint64(ms) % seedRange
}

// Select picks one template. Identical seedKey with regenerate=false always
// yields the same template.
func (s Selector) Select(templates []string, seedKey string, regenerate bool) string {
	if len(templates) == 0 {
		return ""
	}
	seed := TextSeed(seedKey)
	if regenerate {
		seed = s.ClockSeed()
	}
	return templates[newRand(seed).IntN(len(templates))]
}

// Shuffle permutes n elements with a fresh clock seed.
func (s Selector) Shuffle(n int, swap func(i, j int)) {
	if n < 2 {
		return
	}
	newRand(s.ClockSeed()).Shuffle(n, swap)
}

// Enhancer picks one supplementary sentence with a fresh clock seed.
func (s Selector) Enhancer(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}
	return sentences[newRand(s.ClockSeed()).IntN(len(sentences))]
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seedRange))
}
