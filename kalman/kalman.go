// Package kalman runs the linear Kalman recursion fusing wheel
// odometry, an inertial heading sensor and a positional fix into one
// temporally consistent pose estimate.
//
// The recursion is strictly sequential: every step's prediction
// depends on the previous posterior, so steps are processed in frame
// order. A filter instance owns its own state and covariance and is
// not safe for concurrent use; concurrent runs with different
// configurations each need their own instance.
package kalman

import (
	"fmt"

	posefuse "github.com/statespace/go-posefuse"
	"github.com/statespace/go-posefuse/estimate"
	"github.com/statespace/go-posefuse/frame"
	"github.com/statespace/go-posefuse/matrix"
	"github.com/statespace/go-posefuse/measurement"
	"github.com/statespace/go-posefuse/motion"
	"github.com/statespace/go-posefuse/noise"
	"gonum.org/v1/gonum/mat"
)

// Filter is the pose fusion Kalman filter.
type Filter struct {
	// cfg is static filter configuration
	cfg posefuse.Config
	// src yields sensor frames in timestep order
	src posefuse.FrameSource
	// model is the vehicle motion model
	model *motion.Model
	// composer builds fused measurements
	composer *measurement.Composer
	// q is process noise
	q posefuse.Noise
	// h is the measurement effect matrix. Every state component has a
	// direct or constructed observation, so h is identity.
	h *mat.Dense
	// p is the covariance of the latest state
	p *mat.SymDense
	// k is the latest Kalman gain
	k *mat.Dense
	// history holds one state vector per processed timestep plus the
	// initial state, zero by default. It is append only.
	history []*mat.VecDense
	// next is the index of the next timestep to process
	next int
}

// New creates a new pose fusion filter over the given frame series
// configured by cfg, starting from the default initial condition: the
// zero state with the configured initial covariance scale.
func New(series *frame.Series, cfg posefuse.Config) (*Filter, error) {
	return NewWithInit(series, cfg, nil)
}

// NewWithInit creates a new pose fusion filter over the given frame
// series configured by cfg. The configured covariance overrides and
// the one-shot GPS noise injection are applied to the series here,
// before any filtering. A non-nil init replaces the default initial
// state and covariance.
// It returns error if the configuration or the initial condition is
// invalid or the series can not serve as a frame source.
func NewWithInit(series *frame.Series, cfg posefuse.Config, init posefuse.InitCond) (*Filter, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty frame series", posefuse.ErrMalformedInput)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.GPSVarOverride != nil {
		series.OverrideGPSVar(cfg.GPSVarOverride[0], cfg.GPSVarOverride[1])
	}

	if cfg.IMUVarOverride != nil {
		series.OverrideIMUVar(*cfg.IMUVarOverride)
	}

	if cfg.GPSNoiseSigma != nil {
		if err := series.AddGPSNoise(*cfg.GPSNoiseSigma); err != nil {
			return nil, err
		}
	}

	model, err := motion.New(cfg.DeltaT)
	if err != nil {
		return nil, err
	}

	composer, err := measurement.NewComposer(series, cfg)
	if err != nil {
		return nil, err
	}

	q, err := noise.NewStatic(matrix.ScaledIdentitySym(posefuse.StateDim, cfg.ProcessNoise))
	if err != nil {
		return nil, err
	}

	h := mat.NewDense(posefuse.StateDim, posefuse.StateDim, nil)
	for i := 0; i < posefuse.StateDim; i++ {
		h.Set(i, i, 1.0)
	}

	state := mat.NewVecDense(posefuse.StateDim, nil)
	p := matrix.ScaledIdentitySym(posefuse.StateDim, cfg.InitCov)

	if init != nil {
		if init.State().Len() != posefuse.StateDim || init.Cov().SymmetricDim() != posefuse.StateDim {
			return nil, fmt.Errorf("invalid initial condition dimensions: %d, [%d x %d]",
				init.State().Len(), init.Cov().SymmetricDim(), init.Cov().SymmetricDim())
		}

		state.CloneFromVec(init.State())

		p = mat.NewSymDense(posefuse.StateDim, nil)
		p.CopySym(init.Cov())
	}

	return &Filter{
		cfg:      cfg,
		src:      series,
		model:    model,
		composer: composer,
		q:        q,
		h:        h,
		p:        p,
		k:        mat.NewDense(posefuse.StateDim, posefuse.StateDim, nil),
		history:  []*mat.VecDense{state},
	}, nil
}

// Step processes timestep i: it predicts the state from the previous
// posterior, composes the fused measurement, computes the Kalman gain
// and corrects the prediction. The posterior state is appended to the
// history and the covariance replaced.
//
// Timesteps must be processed in order; any other i returns an error
// wrapping posefuse.ErrMalformedInput. A numerically singular
// innovation covariance returns an error wrapping
// posefuse.ErrSingularCovariance and appends no state.
func (f *Filter) Step(i int) (posefuse.Estimate, error) {
	if i != f.next {
		return nil, fmt.Errorf("%w: out-of-order timestep %d, expected %d", posefuse.ErrMalformedInput, i, f.next)
	}

	if i >= f.src.Len() {
		return nil, fmt.Errorf("%w: timestep %d beyond frame count %d", posefuse.ErrMalformedInput, i, f.src.Len())
	}

	xPrev := f.history[len(f.history)-1]

	xPred, pPred, err := f.model.Predict(xPrev, f.p, f.src.Frame(i).OdomHeading, f.q)
	if err != nil {
		return nil, fmt.Errorf("prediction failed at timestep %d: %v", i, err)
	}

	z, r, err := f.composer.Compose(i)
	if err != nil {
		return nil, fmt.Errorf("measurement composition failed at timestep %d: %v", i, err)
	}

	// innovation covariance S = R + H*P*H'
	s := new(mat.Dense)
	s.Mul(f.h, pPred)
	s.Mul(s, f.h.T())
	s.Add(s, r)

	sInv := new(mat.Dense)
	if err := sInv.Inverse(s); err != nil {
		return nil, fmt.Errorf("%w: timestep %d: %v", posefuse.ErrSingularCovariance, i, err)
	}

	// Kalman gain K = P*H'*S^-1
	gain := new(mat.Dense)
	gain.Mul(pPred, f.h.T())
	gain.Mul(gain, sInv)

	// innovation z - H*x
	yPred := mat.NewVecDense(posefuse.StateDim, nil)
	yPred.MulVec(f.h, xPred)

	inn := mat.NewVecDense(posefuse.StateDim, nil)
	inn.SubVec(z, yPred)

	// posterior state x = x + K*(z - H*x)
	corr := mat.NewVecDense(posefuse.StateDim, nil)
	corr.MulVec(gain, inn)

	x := mat.NewVecDense(posefuse.StateDim, nil)
	x.AddVec(xPred, corr)

	// posterior covariance P = P - K*S*K'
	ksk := new(mat.Dense)
	ksk.Mul(gain, s)
	ksk.Mul(ksk, gain.T())

	pCorr := new(mat.Dense)
	pCorr.Sub(pPred, ksk)

	f.history = append(f.history, x)
	f.p = matrix.Symmetrize(pCorr)
	f.k.Copy(gain)
	f.next++

	return estimate.NewBaseWithCov(x, f.p)
}

// Run processes all remaining timesteps in order. It stops at the
// first failing step and returns its error; the history accumulated
// before the failure remains valid and readable.
func (f *Filter) Run() error {
	for i := f.next; i < f.src.Len(); i++ {
		if _, err := f.Step(i); err != nil {
			return err
		}
	}

	return nil
}

// Completed reports whether every timestep has been processed.
func (f *Filter) Completed() bool {
	return f.next == f.src.Len()
}

// Len returns the number of state vectors in the history: one per
// processed timestep plus the initial state.
func (f *Filter) Len() int {
	return len(f.history)
}

// History returns the ordered state vector history. The returned
// vectors are copies; historical entries are never mutated.
func (f *Filter) History() []mat.Vector {
	history := make([]mat.Vector, len(f.history))
	for i, x := range f.history {
		v := mat.NewVecDense(x.Len(), nil)
		v.CopyVec(x)
		history[i] = v
	}

	return history
}

// State returns the state vector at history index i.
// It panics if i is out of range.
func (f *Filter) State(i int) mat.Vector {
	v := mat.NewVecDense(f.history[i].Len(), nil)
	v.CopyVec(f.history[i])

	return v
}

// Latest returns the latest state estimate with its covariance.
func (f *Filter) Latest() posefuse.Estimate {
	est, _ := estimate.NewBaseWithCov(f.history[len(f.history)-1], f.p)

	return est
}

// Cov returns the covariance of the latest state.
func (f *Filter) Cov() mat.Symmetric {
	cov := mat.NewSymDense(f.p.SymmetricDim(), nil)
	cov.CopySym(f.p)

	return cov
}

// Gain returns the latest Kalman gain.
func (f *Filter) Gain() mat.Matrix {
	gain := &mat.Dense{}
	gain.CloneFrom(f.k)

	return gain
}
