package selection

import "slices"

// Median returns the middle value of xs, averaging the two middle values when
// len(xs) is even. It returns 0 for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// SplitAtMedian labels scores strictly above the median as high (true).
// Scores equal to the median fall into the low group.
func SplitAtMedian(scores []float64) []bool {
	med := Median(scores)
	out := make([]bool, len(scores))
	for i, s := range scores {
		out[i] = s > med
	}
	return out
}
