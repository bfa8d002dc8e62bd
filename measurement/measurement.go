// Package measurement composes the fused observation of the full pose
// state for a single timestep: a 5-vector built from wheel odometry,
// the positional fix and the inertial heading, together with its
// diagonal covariance.
package measurement

import (
	"fmt"
	"math"

	posefuse "github.com/statespace/go-posefuse"
	"github.com/statespace/go-posefuse/fuse"
	"gonum.org/v1/gonum/mat"
)

// Composer builds the fused measurement vector and its covariance.
//
// The five channels are modeled as mutually independent: off-diagonal
// entries of the covariance are zero. This is a deliberate design
// assumption, not a derived result; correlated GPS errors between the
// x and y axes are not modeled.
type Composer struct {
	// cfg is static filter configuration
	cfg posefuse.Config
	// src yields sensor frames in timestep order
	src posefuse.FrameSource
}

// NewComposer creates a new measurement composer over src.
// It returns error if src is nil or empty, or if cfg is invalid.
func NewComposer(src posefuse.FrameSource, cfg posefuse.Config) (*Composer, error) {
	if src == nil || src.Len() == 0 {
		return nil, fmt.Errorf("invalid frame source: %v", src)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Composer{
		cfg: cfg,
		src: src,
	}, nil
}

// Compose returns the fused measurement vector z and its diagonal
// covariance R for timestep i. Position and heading fuse two
// independent sources; speed and yaw rate have a single constructed
// source, so their channels are asserted with the configured
// measurement variance:
//
//	z[0], R[0,0]: odometry x (+) gps x
//	z[1], R[1,1]: odometry y (+) gps y
//	z[2], R[2,2]: fixed speed, configured variance
//	z[3], R[3,3]: odometry heading (+) inertial heading
//	z[4], R[4,4]: yaw rate v*tan(heading)/wheel distance, configured variance
//
// It returns error if i is out of range.
func (c *Composer) Compose(i int) (*mat.VecDense, *mat.SymDense, error) {
	if i < 0 || i >= c.src.Len() {
		return nil, nil, fmt.Errorf("invalid timestep index: %d", i)
	}

	f := c.src.Frame(i)

	// configured odometry-side standard deviation
	odomStddev := math.Sqrt(c.cfg.MeasurementVar)

	z := mat.NewVecDense(posefuse.StateDim, nil)
	r := mat.NewSymDense(posefuse.StateDim, nil)

	x, xDev := fuse.Scalars(f.OdomX, f.GPSX, odomStddev, math.Sqrt(f.GPSVarX))
	z.SetVec(posefuse.StateX, x)
	r.SetSym(posefuse.StateX, posefuse.StateX, xDev)

	y, yDev := fuse.Scalars(f.OdomY, f.GPSY, odomStddev, math.Sqrt(f.GPSVarY))
	z.SetVec(posefuse.StateY, y)
	r.SetSym(posefuse.StateY, posefuse.StateY, yDev)

	// no independent speed sensor exists: assertion, not fusion
	z.SetVec(posefuse.StateV, c.cfg.Velocity)
	r.SetSym(posefuse.StateV, posefuse.StateV, c.cfg.MeasurementVar)

	hdg, hdgDev := fuse.Scalars(f.OdomHeading, f.IMUHeading, odomStddev, math.Sqrt(f.IMUVar))
	z.SetVec(posefuse.StateHeading, hdg)
	r.SetSym(posefuse.StateHeading, posefuse.StateHeading, hdgDev)

	// bicycle model kinematic relation between heading, fixed speed
	// and yaw rate
	omega := c.cfg.Velocity * math.Tan(f.OdomHeading*math.Pi/180) / c.cfg.WheelDistance
	z.SetVec(posefuse.StateOmega, omega)
	r.SetSym(posefuse.StateOmega, posefuse.StateOmega, c.cfg.MeasurementVar)

	return z, r, nil
}
