package embedding

import (
	"math"
	"sort"
)

// CosineSimilarity computes similarity between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Match is a candidate ranked by similarity
type Match struct {
	ID    string
	Score float64
}

// Nearest ranks candidates against query, skipping exclude, best first.
// At most k matches with a positive score are returned.
func Nearest(query []float64, candidates map[string][]float64, exclude string, k int) []Match {
	matches := make([]Match, 0, len(candidates))
	for id, vec := range candidates {
		if id == exclude {
			continue
		}
		if score := CosineSimilarity(query, vec); score > 0 {
			matches = append(matches, Match{ID: id, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
