package cee

// FusionWeights are the fixed dense/BM25 fusion weights, validated to sum
// to 1 at compile time by the constant below.
const (
	DenseWeight = 0.7
	BM25Weight  = 0.3
)

// Any sum other than exactly 1 makes this conversion a compile error.
const _ = uint(1 - (DenseWeight + BM25Weight))

// Fuse combines a min-max normalized dense score and BM25 score into one
// hybrid score: fused = 0.7*dense + 0.3*bm25.
func Fuse(dense, bm25 float64) float64 {
	return DenseWeight*dense + BM25Weight*bm25
}

// MinMaxNormalize rescales scores into [0,1] across the candidate set. A
// degenerate set (all equal, or empty) normalizes to 0 for every element
// rather than dividing by zero.
func MinMaxNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == min {
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}
