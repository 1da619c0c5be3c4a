package buffer

import (
	"math"
)

// Stats tracks running statistical properties of a stream of numbers.
// Non finite values are counted separately and kept out of the aggregates.
type Stats struct {
	count          int
	invalid        int
	last           float64
	min, max       float64
	mean, dSquared float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.invalid++
		return
	}
	s.count++
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	s.dSquared += (v - mean) * (v - s.mean)
	s.mean = mean

	if s.min > v {
		s.min = v
	}
	if s.max < v {
		s.max = v
	}
	s.last = v
}

// Avg returns the average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Count returns the number of finite elements.
func (s Stats) Count() int {
	return s.count
}

// Invalid returns the number of non finite elements pushed.
func (s Stats) Invalid() int {
	return s.invalid
}

// Min returns the smallest element.
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest element.
func (s Stats) Max() float64 {
	return s.max
}

// Last returns the most recent finite element.
func (s Stats) Last() float64 {
	return s.last
}

// Variance is the mathematical variance of the set.
func (s Stats) Variance() float64 {
	if s.count == 0 {
		return 0
	}
	return s.dSquared / float64(s.count)
}

// StDev is the standard deviation of the set.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}
