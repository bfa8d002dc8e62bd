package motion

import (
	"math"
	"testing"

	"github.com/statespace/go-posefuse/matrix"
	"github.com/statespace/go-posefuse/noise"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	m, err := New(1e-3)
	assert.NotNil(m)
	assert.NoError(err)

	m, err = New(0)
	assert.Nil(m)
	assert.Error(err)

	m, err = New(-1e-3)
	assert.Nil(m)
	assert.Error(err)
}

func TestTransitionMatrix(t *testing.T) {
	assert := assert.New(t)

	delta := 1e-12

	m, err := New(1.0)
	assert.NoError(err)

	f := m.TransitionMatrix(0.0)
	want := mat.NewDense(5, 5, []float64{
		1, 0, 1, 0, 0,
		0, 1, 1, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 1,
		0, 0, 0, 0, 1,
	})
	assert.True(mat.EqualApprox(want, f, delta))

	// both position rows couple velocity through cos(theta); this
	// locks in the current y row behavior
	f = m.TransitionMatrix(60.0)
	assert.InDelta(0.5, f.At(0, 2), delta)
	assert.InDelta(0.5, f.At(1, 2), delta)

	f = m.TransitionMatrix(90.0)
	assert.InDelta(0.0, f.At(0, 2), delta)
	assert.InDelta(0.0, f.At(1, 2), delta)
}

func TestPredict(t *testing.T) {
	assert := assert.New(t)

	delta := 1e-12

	m, err := New(1.0)
	assert.NoError(err)

	x := mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0})
	p := matrix.ScaledIdentitySym(5, 0.01)

	// zero process noise, heading 0, dt 1:
	// x' = x + v, y' = y + v, heading' = heading + omega
	q, err := noise.NewZero(5)
	assert.NoError(err)

	xNext, pNext, err := m.Predict(x, p, 0.0, q)
	assert.NoError(err)
	assert.InDelta(4.0, xNext.AtVec(0), delta)
	assert.InDelta(5.0, xNext.AtVec(1), delta)
	assert.InDelta(3.0, xNext.AtVec(2), delta)
	assert.InDelta(9.0, xNext.AtVec(3), delta)
	assert.InDelta(5.0, xNext.AtVec(4), delta)

	// covariance stays symmetric
	assert.True(matrix.IsSymmetric(pNext, 1e-12))

	// process noise is added on the diagonal
	qs, err := noise.NewStatic(matrix.ScaledIdentitySym(5, 1e-4))
	assert.NoError(err)

	pPlain := pNext
	_, pNoise, err := m.Predict(x, p, 0.0, qs)
	assert.NoError(err)
	assert.InDelta(pPlain.At(4, 4)+1e-4, pNoise.At(4, 4), delta)

	// invalid dimensions
	_, _, err = m.Predict(mat.NewVecDense(3, nil), p, 0.0, q)
	assert.Error(err)

	_, _, err = m.Predict(x, matrix.ScaledIdentitySym(3, 1.0), 0.0, q)
	assert.Error(err)
}

func TestPredictNoNoise(t *testing.T) {
	assert := assert.New(t)

	m, err := New(1.0)
	assert.NoError(err)

	x := mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0})
	p := matrix.ScaledIdentitySym(5, 0.01)

	// None is the explicit no-process-noise value: it propagates the
	// covariance exactly like a nil noise
	none, err := noise.NewNone()
	assert.NoError(err)

	_, pNone, err := m.Predict(x, p, 0.0, none)
	assert.NoError(err)

	_, pNil, err := m.Predict(x, p, 0.0, nil)
	assert.NoError(err)

	assert.True(mat.EqualApprox(pNil, pNone, 1e-12))

	// and unlike a static process noise
	qs, err := noise.NewStatic(matrix.ScaledIdentitySym(5, 1e-4))
	assert.NoError(err)

	_, pQ, err := m.Predict(x, p, 0.0, qs)
	assert.NoError(err)
	assert.InDelta(pNone.At(0, 0)+1e-4, pQ.At(0, 0), 1e-12)
}

func TestPredictControl(t *testing.T) {
	assert := assert.New(t)

	m, err := New(1.0)
	assert.NoError(err)

	// control input shifts the prediction through the identity
	// input effect
	u := mat.NewVecDense(5, []float64{0.5, 0, 0, 0, 0})
	assert.NoError(m.SetControl(u))

	x := mat.NewVecDense(5, nil)
	p := matrix.ScaledIdentitySym(5, 0.01)

	xNext, _, err := m.Predict(x, p, 0.0, nil)
	assert.NoError(err)
	assert.InDelta(0.5, xNext.AtVec(0), 1e-12)

	assert.Error(m.SetControl(mat.NewVecDense(2, nil)))
}

func TestPredictHeading(t *testing.T) {
	assert := assert.New(t)

	m, err := New(0.5)
	assert.NoError(err)

	x := mat.NewVecDense(5, []float64{0, 0, 2.0, 0, 0})
	p := matrix.ScaledIdentitySym(5, 0.01)

	xNext, _, err := m.Predict(x, p, 60.0, nil)
	assert.NoError(err)

	// dt*cos(60 deg)*v = 0.5*0.5*2
	want := 0.5 * math.Cos(math.Pi/3) * 2.0
	assert.InDelta(want, xNext.AtVec(0), 1e-12)
	assert.InDelta(want, xNext.AtVec(1), 1e-12)
}
