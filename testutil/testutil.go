// Package testutil provides deterministic data generators and a brute-force
// reference ranker for index and engine tests.
package testutil

import (
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"github.com/hupe1980/impactgo/index"
)

// RNG is a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// IDs returns count distinct ascending document ids below documents.
func (r *RNG) IDs(count, documents int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	picked := r.rand.Perm(documents)[:count]
	sort.Ints(picked)

	ids := make([]uint32, count)
	for i, id := range picked {
		ids[i] = uint32(id)
	}
	return ids
}

// Postings generates a random impact-grouped postings map over the given
// terms. Every term gets between 1 and maxSegments impact groups with
// distinct impacts in [1, maxImpact], each holding up to maxLen postings.
func (r *RNG) Postings(terms []string, documents, maxSegments, maxImpact, maxLen int) map[string][]index.PostingsList {
	out := make(map[string][]index.PostingsList, len(terms))
	for _, term := range terms {
		segments := 1 + r.Intn(maxSegments)

		r.mu.Lock()
		impacts := r.rand.Perm(maxImpact)[:segments]
		r.mu.Unlock()

		lists := make([]index.PostingsList, 0, segments)
		for _, impact := range impacts {
			count := 1 + r.Intn(maxLen)
			if count > documents {
				count = documents
			}
			lists = append(lists, index.PostingsList{
				Impact: uint32(impact + 1),
				IDs:    r.IDs(count, documents),
			})
		}
		out[term] = lists
	}
	return out
}

// Ranked is one entry of a reference ranking.
type Ranked struct {
	ID    uint32
	Score uint32
}

// BruteForceTopK scores a query against a postings map by plain summation
// and returns the top k by (score, higher id first). This is the ground
// truth the heap strategies must reproduce.
func BruteForceTopK(terms map[string][]index.PostingsList, queryTerms []string, documents, k int) []Ranked {
	scores := make([]uint32, documents)
	for _, term := range queryTerms {
		for _, list := range terms[term] {
			for _, id := range list.IDs {
				scores[id] += list.Impact
			}
		}
	}

	ranked := make([]Ranked, 0, documents)
	for id, score := range scores {
		if score > 0 {
			ranked = append(ranked, Ranked{ID: uint32(id), Score: score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID > ranked[j].ID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Keys returns n synthetic primary keys.
func Keys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = "doc-" + strconv.Itoa(i)
	}
	return keys
}
