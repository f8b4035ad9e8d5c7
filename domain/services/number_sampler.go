package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"lotterypay/domain/entities"
)

// NumberSampler draws sets of distinct numbers from a closed range
type NumberSampler struct {
	min  int
	max  int
	size int
}

// NewNumberSampler validates the range and set size.
// A set size larger than the range cannot be satisfied without repeats.
func NewNumberSampler(min, max, size int) (*NumberSampler, error) {
	if min > max {
		return nil, fmt.Errorf("%w: min %d exceeds max %d", entities.ErrInvalidSamplerConfig, min, max)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: set size must be at least 1", entities.ErrInvalidSamplerConfig)
	}
	if size > max-min+1 {
		return nil, fmt.Errorf("%w: set size %d exceeds range of %d numbers",
			entities.ErrInvalidSamplerConfig, size, max-min+1)
	}
	return &NumberSampler{min: min, max: max, size: size}, nil
}

// Draw returns count independent sets, each sorted ascending
func (s *NumberSampler) Draw(count int) (entities.Numbers, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	numbers := make(entities.Numbers, count)
	for i := range numbers {
		set, err := s.drawSet()
		if err != nil {
			return nil, err
		}
		numbers[i] = set
	}
	return numbers, nil
}

// drawSet runs a partial Fisher-Yates shuffle over the range, so every
// size-subset is equally likely.
func (s *NumberSampler) drawSet() ([]int, error) {
	pool := make([]int, s.max-s.min+1)
	for i := range pool {
		pool[i] = s.min + i
	}

	for i := 0; i < s.size; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return nil, fmt.Errorf("random generation failed: %w", err)
		}
		j := i + int(n.Int64())
		pool[i], pool[j] = pool[j], pool[i]
	}

	set := make([]int, s.size)
	copy(set, pool[:s.size])
	sort.Ints(set)
	return set, nil
}

// SetSize returns how many numbers each set contains
func (s *NumberSampler) SetSize() int {
	return s.size
}
