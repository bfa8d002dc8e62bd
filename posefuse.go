package posefuse

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMalformedInput is returned when sensor data can not be parsed
	// into a consistent frame sequence. It is raised at load time,
	// before any filtering runs.
	ErrMalformedInput = errors.New("malformed input")
	// ErrSingularCovariance is returned when the innovation covariance
	// can not be inverted. The failing step appends no state.
	ErrSingularCovariance = errors.New("singular covariance")
)

// Frame is one timestep of sensor readings: wheel odometry pose,
// inertial heading with its reported variance and a positional fix
// with its per-axis reported variance. Frames are read-only once
// loaded; reported variances must be non-negative.
type Frame struct {
	// Time is the frame timestamp
	Time float64
	// OdomX, OdomY and OdomHeading are the wheel odometry readings.
	// Heading is in degrees.
	OdomX, OdomY, OdomHeading float64
	// IMUHeading is the inertial heading in degrees, IMUVar its
	// reported variance
	IMUHeading, IMUVar float64
	// GPSX and GPSY are the positional fix coordinates
	GPSX, GPSY float64
	// GPSVarX and GPSVarY are the per-axis positional fix variances
	GPSVarX, GPSVarY float64
}

// FrameSource yields sensor frames in timestep order.
type FrameSource interface {
	// Len returns the number of frames
	Len() int
	// Frame returns the frame at step i
	Frame(i int) Frame
}

// Estimate is pose filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// InitCond is initial state condition of the filter
type InitCond interface {
	// State returns initial filter state
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset()
}
