// Package market implements the periodic bounded random walk applied
// to stock prices. This is deliberately a crude walk, not a market
// simulation: each symbol moves independently by a uniform integer
// perturbation and prices are floor-clamped at 1.
package market

import "math/rand"

// Step applies one walk step to a price: a uniformly distributed
// integer perturbation in [-maxStep, +maxStep] inclusive, with the
// result clamped to a minimum of 1.
func Step(price int64, maxStep int64, rng *rand.Rand) int64 {
	delta := rng.Int63n(2*maxStep+1) - maxStep
	next := price + delta
	if next < 1 {
		return 1
	}
	return next
}
