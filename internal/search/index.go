package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/spirelore/spirebot/internal/content"
)

// Match is one ranked index hit. Score is a dissimilarity: lower is better,
// zero is a perfect match.
type Match struct {
	Record content.Record
	Score  float64
}

// Index is the in-memory record store plus its fuzzy view. It is populated
// once at startup and read-only afterward, so concurrent searches need no
// locking.
type Index struct {
	records []content.Record
}

func New() *Index {
	return &Index{}
}

func (ix *Index) Add(record content.Record) {
	ix.records = append(ix.records, record)
}

func (ix *Index) Len() int {
	return len(ix.records)
}

// Kinds reports how many records each kind contributes.
func (ix *Index) Kinds() map[string]int {
	counts := make(map[string]int, 8)
	for _, record := range ix.records {
		counts[record.Kind]++
	}
	return counts
}

// fuzzy.Source view over the flattened search strings.
type indexSource []content.Record

func (s indexSource) String(i int) string { return s[i].SearchText }
func (s indexSource) Len() int            { return len(s) }

// Search returns ranked approximate matches for a normalized query, best
// first. An empty query or a query with no plausible match returns nil.
func (ix *Index) Search(normalizedQuery string) []Match {
	if normalizedQuery == "" {
		return nil
	}
	found := fuzzy.FindFrom(normalizedQuery, indexSource(ix.records))
	if len(found) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(found))
	for _, hit := range found {
		matches = append(matches, Match{
			Record: ix.records[hit.Index],
			Score:  dissimilarity(hit.Score),
		})
	}
	return matches
}

// ExactByName scans the store for a record whose normalized name equals the
// query verbatim. The corpus is small, so a linear scan is fine here.
func (ix *Index) ExactByName(normalizedName string) (content.Record, bool) {
	if normalizedName == "" {
		return content.Record{}, false
	}
	for _, record := range ix.records {
		if record.NormalizedName == normalizedName {
			return record, true
		}
	}
	return content.Record{}, false
}

// dissimilarity maps the fuzzy engine's higher-is-better similarity onto the
// lower-is-better scale the resolver works with. Zero is reserved for exact
// matches, so converted scores stay strictly positive.
func dissimilarity(similarity int) float64 {
	if similarity < 0 {
		similarity = 0
	}
	return 1.0 / (1.0 + float64(similarity))
}
