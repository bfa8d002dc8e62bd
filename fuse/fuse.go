package fuse

import "math"

// Eps is the variance floor used when a sensor reports an exactly-zero
// variance. It is the machine epsilon of a 32bit float, which keeps the
// fusion total over all non-negative variance inputs.
const Eps = 1.1920929e-07

// Scalars combines two independent Gaussian estimates of the same
// quantity into one. It accepts the two means and the two standard
// deviations (not variances) and returns the precision weighted mean
// together with the resulting standard deviation.
//
// The fused mean always lies between the input means and the fused
// standard deviation never exceeds the smaller of the two inputs.
func Scalars(m1, m2, s1, s2 float64) (mean, stddev float64) {
	v1 := math.Max(s1*s1, Eps)
	v2 := math.Max(s2*s2, Eps)

	precision := 1/v1 + 1/v2

	mean = (m1/v1 + m2/v2) / precision
	stddev = math.Sqrt(1 / precision)

	return mean, stddev
}
