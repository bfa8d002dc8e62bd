package sim

import (
	"testing"

	posefuse "github.com/statespace/go-posefuse"
	"github.com/statespace/go-posefuse/frame"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func testData(t *testing.T) (*frame.Series, []mat.Vector) {
	t.Helper()

	s, err := frame.New([]posefuse.Frame{
		{Time: 0, IMUVar: 0.01, GPSVarX: 0.01, GPSVarY: 0.01},
		{Time: 1, OdomX: 1, GPSX: 1, IMUVar: 0.01, GPSVarX: 0.01, GPSVarY: 0.01},
	})
	if err != nil {
		t.Fatalf("failed to create frame series: %v", err)
	}

	history := []mat.Vector{
		mat.NewVecDense(posefuse.StateDim, nil),
		mat.NewVecDense(posefuse.StateDim, []float64{0.5, 0, 0.14, 0, 0}),
		mat.NewVecDense(posefuse.StateDim, []float64{1.0, 0, 0.14, 0, 0}),
	}

	return s, history
}

func TestNewPositionPlot(t *testing.T) {
	assert := assert.New(t)

	s, history := testData(t)

	plt, err := NewPositionPlot(s, history)
	assert.NotNil(plt)
	assert.NoError(err)

	plt, err = NewPositionPlot(nil, history)
	assert.Nil(plt)
	assert.Error(err)

	plt, err = NewPositionPlot(s, nil)
	assert.Nil(plt)
	assert.Error(err)
}

func TestNewHeadingPlot(t *testing.T) {
	assert := assert.New(t)

	s, history := testData(t)

	plt, err := NewHeadingPlot(s, history)
	assert.NotNil(plt)
	assert.NoError(err)

	plt, err = NewHeadingPlot(nil, history)
	assert.Nil(plt)
	assert.Error(err)

	plt, err = NewHeadingPlot(s, nil)
	assert.Nil(plt)
	assert.Error(err)
}
