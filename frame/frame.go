// Package frame loads and holds the sensor frame sequence consumed by
// the pose filter. Frames come from CSV with a header row; columns are
// looked up by key, not position, so column order in the file does not
// matter.
package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	posefuse "github.com/statespace/go-posefuse"
	"github.com/statespace/go-posefuse/matrix"
	"github.com/statespace/go-posefuse/noise"
)

// CSV column keys of the sensor data contract.
const (
	TimeKey    = "%time"
	OdomXKey   = "field.O_x"
	OdomYKey   = "field.O_y"
	OdomHdgKey = "field.O_t"
	IMUHdgKey  = "field.I_t"
	IMUVarKey  = "field.Co_I_t"
	GPSXKey    = "field.G_x"
	GPSYKey    = "field.G_y"
	GPSVarXKey = "field.Co_gps_x"
	GPSVarYKey = "field.Co_gps_y"
)

var columns = []string{
	TimeKey,
	OdomXKey, OdomYKey, OdomHdgKey,
	IMUHdgKey, IMUVarKey,
	GPSXKey, GPSYKey, GPSVarXKey, GPSVarYKey,
}

// Series is an ordered sequence of sensor frames. Frames are appended
// at load time and never mutated afterwards, with one exception: the
// covariance overrides and the one-shot GPS noise injection, both of
// which run before any filtering.
type Series struct {
	frames []posefuse.Frame
}

// New creates a new Series from the given frames.
// It returns error if any frame reports a negative variance.
func New(frames []posefuse.Frame) (*Series, error) {
	for i, f := range frames {
		if err := validate(f); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	s := make([]posefuse.Frame, len(frames))
	copy(s, frames)

	return &Series{frames: s}, nil
}

// Load reads the sensor frame sequence from r.
// It returns error wrapping posefuse.ErrMalformedInput if the header
// misses a required column, a field fails to parse, a reported variance
// is negative, timestamps are not strictly increasing or the data holds
// no frames at all.
func Load(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", posefuse.ErrMalformedInput, err)
	}

	index := make(map[string]int, len(header))
	for i, key := range header {
		index[key] = i
	}

	for _, key := range columns {
		if _, ok := index[key]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", posefuse.ErrMalformedInput, key)
		}
	}

	var frames []posefuse.Frame
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading record %d: %v", posefuse.ErrMalformedInput, len(frames), err)
		}

		f, err := parseFrame(record, index)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", posefuse.ErrMalformedInput, len(frames), err)
		}

		if len(frames) > 0 && f.Time <= frames[len(frames)-1].Time {
			return nil, fmt.Errorf("%w: record %d: non-monotonic timestamp %v", posefuse.ErrMalformedInput, len(frames), f.Time)
		}

		frames = append(frames, f)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", posefuse.ErrMalformedInput)
	}

	return &Series{frames: frames}, nil
}

// LoadFile reads the sensor frame sequence from the file at path.
func LoadFile(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

func parseFrame(record []string, index map[string]int) (posefuse.Frame, error) {
	var f posefuse.Frame

	fields := []struct {
		key string
		dst *float64
	}{
		{TimeKey, &f.Time},
		{OdomXKey, &f.OdomX},
		{OdomYKey, &f.OdomY},
		{OdomHdgKey, &f.OdomHeading},
		{IMUHdgKey, &f.IMUHeading},
		{IMUVarKey, &f.IMUVar},
		{GPSXKey, &f.GPSX},
		{GPSYKey, &f.GPSY},
		{GPSVarXKey, &f.GPSVarX},
		{GPSVarYKey, &f.GPSVarY},
	}

	for _, field := range fields {
		i := index[field.key]
		if i >= len(record) {
			return f, fmt.Errorf("missing field %q", field.key)
		}

		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return f, fmt.Errorf("field %q: %v", field.key, err)
		}
		*field.dst = v
	}

	return f, validate(f)
}

func validate(f posefuse.Frame) error {
	if f.IMUVar < 0 {
		return fmt.Errorf("negative IMU variance: %v", f.IMUVar)
	}

	if f.GPSVarX < 0 || f.GPSVarY < 0 {
		return fmt.Errorf("negative GPS variance: [%v %v]", f.GPSVarX, f.GPSVarY)
	}

	return nil
}

// Len returns the number of frames in the series.
func (s *Series) Len() int {
	return len(s.frames)
}

// Frame returns the frame at step i.
// It panics if i is out of range.
func (s *Series) Frame(i int) posefuse.Frame {
	return s.frames[i]
}

// Frames returns a copy of all frames in step order.
func (s *Series) Frames() []posefuse.Frame {
	frames := make([]posefuse.Frame, len(s.frames))
	copy(frames, s.frames)

	return frames
}

// OverrideGPSVar replaces the reported GPS variances of every frame
// with the constants vx and vy.
func (s *Series) OverrideGPSVar(vx, vy float64) {
	for i := range s.frames {
		s.frames[i].GPSVarX = vx
		s.frames[i].GPSVarY = vy
	}
}

// OverrideIMUVar replaces the reported IMU variance of every frame
// with the constant v.
func (s *Series) OverrideIMUVar(v float64) {
	for i := range s.frames {
		s.frames[i].IMUVar = v
	}
}

// AddGPSNoise adds zero-mean Gaussian noise with standard deviation
// sigma to the positional fix of every frame. It mutates the series
// once; callers run it before filtering begins.
// It returns error if sigma is not positive.
func (s *Series) AddGPSNoise(sigma float64) error {
	if sigma <= 0 {
		return fmt.Errorf("invalid noise sigma: %v", sigma)
	}

	g, err := noise.NewGaussian([]float64{0, 0}, matrix.ScaledIdentitySym(2, sigma*sigma))
	if err != nil {
		return fmt.Errorf("failed to create GPS noise: %v", err)
	}

	for i := range s.frames {
		sample := g.Sample()
		s.frames[i].GPSX += sample.AtVec(0)
		s.frames[i].GPSY += sample.AtVec(1)
	}

	return nil
}
