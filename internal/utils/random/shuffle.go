package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure shuffle of the slice.
func Shuffle[T any](slice []T) error {
	return partialShuffle(slice, len(slice))
}

// Sample draws k distinct elements uniformly without replacement.
// The input slice is left untouched. k must be in [0, len(items)].
func Sample[T any](items []T, k int) ([]T, error) {
	if k < 0 || k > len(items) {
		return nil, fmt.Errorf("sample size %d out of range [0, %d]", k, len(items))
	}
	pool := make([]T, len(items))
	copy(pool, items)
	if err := partialShuffle(pool, k); err != nil {
		return nil, err
	}
	return pool[:k], nil
}

// partialShuffle fixes the first k positions of a forward Fisher-Yates pass.
func partialShuffle[T any](slice []T, k int) error {
	n := len(slice)
	for i := 0; i < k && i < n-1; i++ {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(n-i)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := i + int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}
