package posefuse

import "fmt"

// State vector layout. Every filter state is a 5-dimensional vector
// holding 2D position, forward speed, heading in degrees and yaw rate.
const (
	StateX = iota
	StateY
	StateV
	StateHeading
	StateOmega

	// StateDim is the state vector dimension
	StateDim = 5
)

// Config is static filter configuration. It is copied into the filter
// at construction and immutable afterwards, so multiple filters with
// different vehicle geometry can coexist.
type Config struct {
	// ProcessNoise scales the diagonal process noise matrix Q
	ProcessNoise float64
	// MeasurementVar is the fixed variance asserted for quantities
	// without two independent sources and used as the odometry-side
	// variance in sensor fusions
	MeasurementVar float64
	// InitCov scales the diagonal initial state covariance
	InitCov float64
	// WheelDistance is the vehicle wheel separation used to derive
	// yaw rate from heading and speed
	WheelDistance float64
	// Velocity is the fixed assumed forward speed
	Velocity float64
	// DeltaT is the fixed timestep duration of the motion model
	DeltaT float64

	// GPSVarOverride, if set, replaces the per-frame reported GPS
	// variances with the given (x, y) constants
	GPSVarOverride *[2]float64
	// IMUVarOverride, if set, replaces the per-frame reported IMU
	// variance with the given constant
	IMUVarOverride *float64
	// GPSNoiseSigma, if set, adds zero-mean Gaussian noise with the
	// given standard deviation to every positional fix, once, before
	// filtering begins
	GPSNoiseSigma *float64
}

// DefaultConfig returns the default filter configuration.
func DefaultConfig() Config {
	return Config{
		ProcessNoise:   1e-4,
		MeasurementVar: 1e-2,
		InitCov:        1e-2,
		WheelDistance:  1.0,
		Velocity:       0.14,
		DeltaT:         1e-3,
	}
}

// Validate checks that all configured scales are usable.
// It returns error if any of them is non-positive.
func (c Config) Validate() error {
	if c.ProcessNoise <= 0 {
		return fmt.Errorf("invalid process noise scale: %v", c.ProcessNoise)
	}

	if c.MeasurementVar <= 0 {
		return fmt.Errorf("invalid measurement variance: %v", c.MeasurementVar)
	}

	if c.InitCov <= 0 {
		return fmt.Errorf("invalid initial covariance scale: %v", c.InitCov)
	}

	if c.WheelDistance <= 0 {
		return fmt.Errorf("invalid wheel distance: %v", c.WheelDistance)
	}

	if c.DeltaT <= 0 {
		return fmt.Errorf("invalid timestep duration: %v", c.DeltaT)
	}

	return nil
}
