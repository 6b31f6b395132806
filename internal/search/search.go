// Package search ranks paths against a fuzzy query.
package search

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Match is one candidate that matched the query.
type Match struct {
	// Index is the candidate's position in the input list.
	Index int
	Str   string
	Score int
	// Positions are the byte offsets of the matched characters.
	Positions []int
}

// Filter returns the candidates matching query, best score first. Equal
// scores keep their input order. An empty query returns every candidate
// in input order.
func Filter(query string, candidates []string) []Match {
	if query == "" {
		out := make([]Match, len(candidates))
		for i, c := range candidates {
			out[i] = Match{Index: i, Str: c}
		}
		return out
	}

	found := fuzzy.Find(query, candidates)
	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{
			Index:     m.Index,
			Str:       m.Str,
			Score:     m.Score,
			Positions: m.MatchedIndexes,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Index caches the result of Filter until the query or the candidate
// list changes.
type Index struct {
	query      string
	candidates []string
	matches    []Match
	stale      bool
}

// NewIndex returns an Index with no candidates and an empty query.
func NewIndex() *Index {
	return &Index{stale: true}
}

// SetCandidates replaces the list being searched.
func (x *Index) SetCandidates(candidates []string) {
	x.candidates = candidates
	x.stale = true
}

// SetQuery changes the query. Setting the same query again keeps the
// cached result.
func (x *Index) SetQuery(q string) {
	if q == x.query {
		return
	}
	x.query = q
	x.stale = true
}

// Query returns the current query.
func (x *Index) Query() string {
	return x.query
}

// Active reports whether a non-empty query is set.
func (x *Index) Active() bool {
	return x.query != ""
}

// Matches returns the ranked matches for the current query.
func (x *Index) Matches() []Match {
	if x.stale {
		x.matches = Filter(x.query, x.candidates)
		x.stale = false
	}
	return x.matches
}
