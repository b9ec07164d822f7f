package observability

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Metric families rendered in the Prometheus text format. Series are keyed by
// their label values and written in sorted order so scrapes diff cleanly.

const (
	defaultMaxSeries = 1000
	overflowLabel    = "other"
	unknownLabel     = "unknown"
	keySep           = "\xff"
)

// seriesSet maps label values onto a series. Past maxSeries distinct label
// sets, new ones fold into a single series labelled "other".
type seriesSet[S any] struct {
	labels    []string
	maxSeries int
	mu        sync.RWMutex
	series    map[string]*S
	values    map[string][]string
}

func newSeriesSet[S any](labels []string) *seriesSet[S] {
	return &seriesSet[S]{
		labels:    labels,
		maxSeries: defaultMaxSeries,
		series:    map[string]*S{},
		values:    map[string][]string{},
	}
}

func (s *seriesSet[S]) normalize(values []string) []string {
	out := make([]string, len(s.labels))
	for i := range out {
		out[i] = unknownLabel
		if i < len(values) && values[i] != "" {
			out[i] = values[i]
		}
	}
	return out
}

// get returns the series for values, creating it under the write lock.
func (s *seriesSet[S]) get(values []string) *S {
	vals := s.normalize(values)
	key := strings.Join(vals, keySep)

	s.mu.RLock()
	ser, ok := s.series[key]
	s.mu.RUnlock()
	if ok {
		return ser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ser, ok := s.series[key]; ok {
		return ser
	}
	if len(s.series) >= s.maxSeries {
		for i := range vals {
			vals[i] = overflowLabel
		}
		key = strings.Join(vals, keySep)
		if ser, ok := s.series[key]; ok {
			return ser
		}
	}
	ser = new(S)
	s.series[key] = ser
	s.values[key] = vals
	return ser
}

func (s *seriesSet[S]) lookup(values []string) *S {
	key := strings.Join(s.normalize(values), keySep)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series[key]
}

// each visits series in sorted key order under the read lock.
func (s *seriesSet[S]) each(fn func(values []string, ser *S) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(s.values[k], s.series[k]); err != nil {
			return err
		}
	}
	return nil
}

// atomicFloat is a float64 updated with compare-and-swap.
type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) add(v float64) {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+v)) {
			return
		}
	}
}

func (f *atomicFloat) store(v float64) { f.bits.Store(math.Float64bits(v)) }
func (f *atomicFloat) load() float64   { return math.Float64frombits(f.bits.Load()) }

type CounterVec struct {
	name string
	help string
	set  *seriesSet[atomicFloat]
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{name: name, help: help, set: newSeriesSet[atomicFloat](labels)}
}

func (c *CounterVec) Inc(values ...string) {
	if c == nil {
		return
	}
	c.set.get(values).add(1)
}

// Value reads one series; unknown label sets read as zero.
func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	if ser := c.set.lookup(values); ser != nil {
		return ser.load()
	}
	return 0
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if err := writeHeader(w, c.name, c.help, "counter"); err != nil {
		return err
	}
	return c.set.each(func(values []string, ser *atomicFloat) error {
		_, err := fmt.Fprintf(w, "%s%s %g\n", c.name, renderLabels(c.set.labels, values), ser.load())
		return err
	})
}

type Gauge struct {
	name string
	help string
	val  atomicFloat
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.val.store(v)
}

func (g *Gauge) Inc() {
	if g != nil {
		g.val.add(1)
	}
}

func (g *Gauge) Dec() {
	if g != nil {
		g.val.add(-1)
	}
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	if err := writeHeader(w, g.name, g.help, "gauge"); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %g\n", g.name, g.val.load())
	return err
}

// HistogramVec keeps per-bucket counts (not cumulative) and folds them into
// Prometheus' cumulative buckets when written.
type HistogramVec struct {
	name    string
	help    string
	buckets []float64
	set     *seriesSet[histogram]
}

type histogram struct {
	mu     sync.Mutex
	counts []uint64 // len(buckets)+1, last slot is +Inf
	sum    float64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &HistogramVec{name: name, help: help, buckets: b, set: newSeriesSet[histogram](labels)}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	idx := sort.SearchFloat64s(h.buckets, v)
	hist := h.set.get(values)
	hist.mu.Lock()
	if hist.counts == nil {
		hist.counts = make([]uint64, len(h.buckets)+1)
	}
	hist.counts[idx]++
	hist.sum += v
	hist.mu.Unlock()
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	labels := h.set.labels
	return h.set.each(func(values []string, hist *histogram) error {
		hist.mu.Lock()
		counts := append([]uint64(nil), hist.counts...)
		sum := hist.sum
		hist.mu.Unlock()
		if counts == nil {
			counts = make([]uint64, len(h.buckets)+1)
		}

		var cum uint64
		for i, b := range h.buckets {
			cum += counts[i]
			le := renderLabels(append(labels[:len(labels):len(labels)], "le"), append(values[:len(values):len(values)], fmt.Sprintf("%g", b)))
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, le, cum); err != nil {
				return err
			}
		}
		cum += counts[len(h.buckets)]
		inf := renderLabels(append(labels[:len(labels):len(labels)], "le"), append(values[:len(values):len(values)], "+Inf"))
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, inf, cum); err != nil {
			return err
		}
		lbl := renderLabels(labels, values)
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n", h.name, lbl, sum); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%s_count%s %d\n", h.name, lbl, cum)
		return err
	})
}

func writeHeader(w io.Writer, name, help, typ string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, typ)
	return err
}

// renderLabels formats {name="value",...}; values are expected to be
// normalized already.
func renderLabels(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + `="` + labelEscaper.Replace(values[i]) + `"`
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
