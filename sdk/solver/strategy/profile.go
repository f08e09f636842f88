// Package strategy stores trained average strategies and reads and writes
// them as text, binary and SQLite files.
package strategy

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Entry is the averaged strategy of one information set.
type Entry struct {
	Key           string
	Visits        int64
	Probabilities []float64
}

// Profile maps info set keys to their averaged strategies.
type Profile struct {
	Iterations int
	entries    map[string]Entry
}

// NewProfile returns an empty profile produced by the given number of
// training iterations.
func NewProfile(iterations int) *Profile {
	return &Profile{Iterations: iterations, entries: make(map[string]Entry)}
}

// Set stores an entry, replacing any previous one with the same key. The
// probabilities are copied.
func (p *Profile) Set(key string, visits int64, probs []float64) {
	p.entries[key] = Entry{Key: key, Visits: visits, Probabilities: append([]float64(nil), probs...)}
}

// Get returns the entry for key.
func (p *Profile) Get(key string) (Entry, bool) {
	e, ok := p.entries[key]
	return e, ok
}

// Len returns the number of info sets.
func (p *Profile) Len() int { return len(p.entries) }

// Entries returns every entry sorted by key.
func (p *Profile) Entries() []Entry {
	out := make([]Entry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ByVisits returns entries visited at least minVisits times, most visited
// first. Ties are broken by key.
func (p *Profile) ByVisits(minVisits int64) []Entry {
	out := make([]Entry, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Visits >= minVisits {
			out = append(out, e)
		}
	}
	sortByVisits(out)
	return out
}

func sortByVisits(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Visits != entries[j].Visits {
			return entries[i].Visits > entries[j].Visits
		}
		return entries[i].Key < entries[j].Key
	})
}

// Find returns entries whose key contains pattern, sorted by key.
func (p *Profile) Find(pattern string) []Entry {
	var out []Entry
	for _, e := range p.Entries() {
		if strings.Contains(e.Key, pattern) {
			out = append(out, e)
		}
	}
	return out
}

// Stats describes the visit distribution of a profile.
type Stats struct {
	InfoSets    int
	TotalVisits int64
	MaxVisits   int64
	MinVisits   int64
	MeanVisits  float64
	StdDev      float64
}

// Stats computes visit statistics over all entries.
func (p *Profile) Stats() Stats {
	s := Stats{InfoSets: len(p.entries)}
	if s.InfoSets == 0 {
		return s
	}
	visits := make([]float64, 0, len(p.entries))
	s.MinVisits = math.MaxInt64
	for _, e := range p.entries {
		s.TotalVisits += e.Visits
		s.MaxVisits = max(s.MaxVisits, e.Visits)
		s.MinVisits = min(s.MinVisits, e.Visits)
		visits = append(visits, float64(e.Visits))
	}
	if len(visits) == 1 {
		s.MeanVisits = visits[0]
		return s
	}
	s.MeanVisits, s.StdDev = stat.MeanStdDev(visits, nil)
	return s
}
