package types

import "github.com/moznion/go-optional"

// Series is a per-date indicator column, index-aligned to a PriceSeries.
// Warm-up positions where the indicator lacks history are None.
type Series []optional.Option[float64]

// NewSeries returns a series of length n with every value undefined.
func NewSeries(n int) Series {
	return make(Series, n)
}

// Defined reports whether the value at index i is defined.
func (s Series) Defined(i int) bool {
	return i >= 0 && i < len(s) && s[i].IsSome()
}

// Value returns the value at index i, or 0 when it is undefined.
func (s Series) Value(i int) float64 {
	return s[i].TakeOr(0)
}

// Set defines the value at index i.
func (s Series) Set(i int, v float64) {
	s[i] = optional.Some(v)
}

// FirstDefined returns the index of the first defined value, or -1.
func (s Series) FirstDefined() int {
	for i := range s {
		if s[i].IsSome() {
			return i
		}
	}

	return -1
}

// DefinedCount returns how many values are defined.
func (s Series) DefinedCount() int {
	n := 0

	for i := range s {
		if s[i].IsSome() {
			n++
		}
	}

	return n
}
