package stats

import (
	"slices"
	"strings"
)

// Entry is one row of the final summary.
type Entry struct {
	Name  string
	Stats FinalStats
}

// Summary is the finalized result ordered by raw byte order of Name.
type Summary []Entry

// Summarize finalizes every station of a and sorts them by name.
func Summarize(a *AggregateMap) Summary {
	out := make(Summary, 0, a.Len())
	for name, s := range a.m {
		out = append(out, Entry{Name: name, Stats: s.Finalize()})
	}
	slices.SortFunc(out, func(x, y Entry) int { return strings.Compare(x.Name, y.Name) })
	return out
}

// Lookup returns the entry for name using binary search.
func (s Summary) Lookup(name string) (FinalStats, bool) {
	i, ok := slices.BinarySearchFunc(s, name, func(e Entry, n string) int { return strings.Compare(e.Name, n) })
	if !ok {
		return FinalStats{}, false
	}
	return s[i].Stats, true
}
