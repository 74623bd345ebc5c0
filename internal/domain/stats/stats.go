// Package stats holds the per-station accumulators and the mergeable map
// that the fold workers build.
package stats

import (
	"github.com/okian/brc/internal/domain/decimal"
	"github.com/okian/brc/internal/domain/record"
)

// KeyStats is the running aggregate of one station.
type KeyStats struct {
	Sum   decimal.Tenths
	Count uint64
	Min   decimal.Tenths
	Max   decimal.Tenths
}

// NewKeyStats starts an aggregate from its first observation.
func NewKeyStats(v decimal.Tenths) KeyStats {
	return KeyStats{Sum: v, Count: 1, Min: v, Max: v}
}

// Incorporate adds one observation.
func (s *KeyStats) Incorporate(v decimal.Tenths) {
	s.Sum += v
	s.Count++
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
}

// Absorb folds another aggregate of the same station into s.
func (s *KeyStats) Absorb(o KeyStats) {
	s.Sum += o.Sum
	s.Count += o.Count
	s.Min = min(s.Min, o.Min)
	s.Max = max(s.Max, o.Max)
}

// FinalStats is the presentation triple of one station.
type FinalStats struct {
	Min  decimal.Tenths
	Mean decimal.Tenths
	Max  decimal.Tenths
}

// Finalize computes the mean, rounded to the nearest tenth.
func (s KeyStats) Finalize() FinalStats {
	return FinalStats{Min: s.Min, Mean: s.Sum.Div(s.Count), Max: s.Max}
}

// String renders min/mean/max.
func (f FinalStats) String() string {
	return string(f.AppendTo(make([]byte, 0, 24)))
}

// AppendTo appends min/mean/max to dst.
func (f FinalStats) AppendTo(dst []byte) []byte {
	dst = f.Min.AppendTo(dst)
	dst = append(dst, '/')
	dst = f.Mean.AppendTo(dst)
	dst = append(dst, '/')
	return f.Max.AppendTo(dst)
}

// AggregateMap maps station names to their aggregates. It is owned by one
// goroutine at a time.
type AggregateMap struct {
	m map[string]*KeyStats
}

// NewAggregateMap returns an empty map sized for about hint stations.
func NewAggregateMap(hint int) *AggregateMap {
	return &AggregateMap{m: make(map[string]*KeyStats, hint)}
}

// Len returns the number of distinct stations.
func (a *AggregateMap) Len() int { return len(a.m) }

// Get returns the aggregate of name.
func (a *AggregateMap) Get(name string) (KeyStats, bool) {
	s, ok := a.m[name]
	if !ok {
		return KeyStats{}, false
	}
	return *s, true
}

// Range calls fn for every station in unspecified order until fn returns false.
func (a *AggregateMap) Range(fn func(name string, s KeyStats) bool) {
	for name, s := range a.m {
		if !fn(name, *s) {
			return
		}
	}
}

// Ingest adds one record. The name is copied only when the station is new.
func (a *AggregateMap) Ingest(rec record.Record) {
	if s, ok := a.m[string(rec.Name)]; ok {
		s.Incorporate(rec.Value)
		return
	}
	if a.m == nil {
		a.m = make(map[string]*KeyStats)
	}
	s := NewKeyStats(rec.Value)
	a.m[string(rec.Name)] = &s
}

// Merge absorbs every station of other into a and leaves other empty.
// The larger of the two tables is kept and the smaller one is walked.
func (a *AggregateMap) Merge(other *AggregateMap) {
	if other == nil || len(other.m) == 0 {
		return
	}
	if len(a.m) < len(other.m) {
		a.m, other.m = other.m, a.m
	}
	for name, s := range other.m {
		if mine, ok := a.m[name]; ok {
			mine.Absorb(*s)
			continue
		}
		a.m[name] = s
	}
	other.m = nil
}
