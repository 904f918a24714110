package selection

import "math"

// relErr is the relative slack used when comparing table probabilities, so
// tables as likely as the observed one are not lost to rounding.
const relErr = 1 + 1e-7

// FisherTwoTailed returns the two-tailed Fisher exact test p-value of the 2x2
// contingency table
//
//	| a b |
//	| c d |
//
// It sums the hypergeometric probabilities of every table with the same
// margins that is no more likely than the observed one.
func FisherTwoTailed(a, b, c, d int) float64 {
	n := a + b + c + d
	if n == 0 {
		return 1
	}
	row1 := a + b
	col1 := a + c
	low := max(0, row1+col1-n)
	high := min(row1, col1)

	denom := logChoose(n, col1)
	prob := func(x int) float64 {
		return math.Exp(logChoose(row1, x) + logChoose(n-row1, col1-x) - denom)
	}

	observed := prob(a) * relErr
	p := 0.0
	for x := low; x <= high; x++ {
		if px := prob(x); px <= observed {
			p += px
		}
	}
	return math.Min(1, math.Max(0, p))
}

func logChoose(n, k int) float64 {
	return logFactorial(n) - logFactorial(k) - logFactorial(n-k)
}

func logFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}
