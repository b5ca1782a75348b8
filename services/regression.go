package services

import (
	"fmt"
	"math"
	"sort"
)

// LinearFit is an ordinary-least-squares line y = Slope*x + Intercept.
type LinearFit struct {
	Slope     float64
	Intercept float64
}

// FitLine computes the least-squares line through (xs[i], ys[i]):
//
//	a = (n*Σxy - Σx*Σy) / (n*Σx² - (Σx)²)
//	b = (Σy - a*Σx) / n
func FitLine(xs, ys []float64) (LinearFit, error) {
	if len(xs) != len(ys) {
		return LinearFit{}, fmt.Errorf("fit: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return LinearFit{}, fmt.Errorf("fit: need at least 2 points, got %d", len(xs))
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
	}

	denominator := n*sumX2 - sumX*sumX
	if math.Abs(denominator) < 1e-10 {
		return LinearFit{}, fmt.Errorf("fit: all x values are equal")
	}

	a := (n*sumXY - sumX*sumY) / denominator
	b := (sumY - a*sumX) / n
	return LinearFit{Slope: a, Intercept: b}, nil
}

// Predict evaluates the line at x.
func (f LinearFit) Predict(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// quantile returns the q-th quantile of sorted values using linear
// interpolation between the order statistics at floor and ceil of q*(n-1).
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the standard deviation with ddof degrees of freedom removed
// (1 for the sample estimator, 0 for the population one). It is 0 when there
// are not enough values.
func stdDev(values []float64, ddof int) float64 {
	n := len(values) - ddof
	if n <= 0 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// percentileOfScore ranks score within values, counting ties as half
// above and half below.
func percentileOfScore(values []float64, score float64) float64 {
	var below, equal int
	for _, v := range values {
		switch {
		case v < score:
			below++
		case v == score:
			equal++
		}
	}
	return 100 * (float64(below) + 0.5*float64(equal)) / float64(len(values))
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
