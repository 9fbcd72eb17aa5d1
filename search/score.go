package search

import "math"

// k1 is the term frequency saturation parameter of the
// Robertson-family scorer. There is no length normalization.
const k1 = 1.2

// idf computes the inverse document frequency for a term. df is the
// number of documents that contain the term after field filtering and
// documentCount is the total number of documents in the corpus.
func idf(df, documentCount int) float64 {
	return math.Log(1.0 + (float64(documentCount)-float64(df)+0.5)/(float64(df)+0.5))
}

// tfSaturation is the term frequency component. It is monotonically
// non-decreasing in tf and approaches k1+2 as tf grows.
func tfSaturation(tf int) float64 {
	return 1.0 + float64(tf)*(k1+1.0)/(float64(tf)+k1)
}
