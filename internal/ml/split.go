// Package ml holds the learning primitives behind the donation forecast and
// feedback sentiment models.
package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrTooFewSamples is returned when a dataset cannot be split or fitted.
var ErrTooFewSamples = errors.New("ml: too few samples")

// TrainTestSplit shuffles 0..n-1 with the given seed and returns disjoint
// train and test index sets. The test set holds ceil(testFraction*n)
// samples.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("ml: test fraction %v out of range (0, 1)", testFraction)
	}
	nTest := int(math.Ceil(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, fmt.Errorf("%w: cannot split %d samples with test fraction %v", ErrTooFewSamples, n, testFraction)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
