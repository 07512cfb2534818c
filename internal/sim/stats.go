package sim

import "math"

// Stats accumulates running moments of a sample using Welford's update, so
// a billion-round simulation never holds its observations in memory. Merge
// combines two accumulators exactly; it is commutative and associative, so
// per-worker partials can merge in any order and land on the same result.
type Stats struct {
	N    int64
	Mean float64
	M2   float64
	Min  float64
	Max  float64
}

// Add folds one observation in.
func (s *Stats) Add(x float64) {
	if s.N == 0 {
		s.Min, s.Max = x, x
	} else {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	s.N++
	delta := x - s.Mean
	s.Mean += delta / float64(s.N)
	s.M2 += delta * (x - s.Mean)
}

// Merge folds another accumulator in (Chan et al. parallel variance).
func (s *Stats) Merge(o Stats) {
	if o.N == 0 {
		return
	}
	if s.N == 0 {
		*s = o
		return
	}
	n := s.N + o.N
	delta := o.Mean - s.Mean
	s.M2 += o.M2 + delta*delta*float64(s.N)*float64(o.N)/float64(n)
	s.Mean += delta * float64(o.N) / float64(n)
	s.N = n
	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
}

// Variance is the sample variance; 0 for fewer than two observations.
func (s *Stats) Variance() float64 {
	if s.N < 2 {
		return 0
	}
	return s.M2 / float64(s.N-1)
}

// StdDev is the sample standard deviation.
func (s *Stats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}
