// Package vector holds embedding vector math shared by the search ranker.
package vector

import "math"

// Cosine returns the cosine similarity of a and b: the dot product divided by
// the product of L2 norms. The result is 0.0 (never NaN, never an error) when
// either vector is empty, all-zero, or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
