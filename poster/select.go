package poster

import (
	"errors"
	"math/rand/v2"
)

var ErrNoEligibleImages = errors.New("no eligible images found")

// SelectRandom picks one item uniformly at random. A nil rnd uses the
// package-level generator.
func SelectRandom[T any](items []T, rnd *rand.Rand) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrNoEligibleImages
	}

	if rnd == nil {
		return items[rand.IntN(len(items))], nil
	}
	return items[rnd.IntN(len(items))], nil
}
