// Package sim provides filter run support: initial conditions and
// plots rendering the filter output next to the raw sensor data, the
// fused trajectory against the GPS and odometry fixes and the fused
// heading against the inertial and odometry headings.
package sim

import (
	"fmt"
	"image/color"

	posefuse "github.com/statespace/go-posefuse"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewPositionPlot creates a 2D plot of the vehicle trajectory from the
// three data sources: GPS fixes as red dots, odometry positions as
// green crosses and the filtered state history as a blue line.
// It returns error if src is nil or empty, the history is empty or a
// plotter fails to be created.
func NewPositionPlot(src posefuse.FrameSource, history []mat.Vector) (*plot.Plot, error) {
	if src == nil || src.Len() == 0 {
		return nil, fmt.Errorf("invalid frame source: %v", src)
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("empty state history")
	}

	p := plot.New()

	p.Title.Text = "Position"
	p.X.Label.Text = "X location"
	p.Y.Label.Text = "Y location"
	p.Legend.Top = true

	gps := make(plotter.XYs, src.Len())
	odom := make(plotter.XYs, src.Len())
	for i := 0; i < src.Len(); i++ {
		f := src.Frame(i)
		gps[i].X, gps[i].Y = f.GPSX, f.GPSY
		odom[i].X, odom[i].Y = f.OdomX, f.OdomY
	}

	fused := make(plotter.XYs, len(history))
	for i, x := range history {
		fused[i].X = x.AtVec(posefuse.StateX)
		fused[i].Y = x.AtVec(posefuse.StateY)
	}

	gpsScatter, err := plotter.NewScatter(gps)
	if err != nil {
		return nil, err
	}
	gpsScatter.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	gpsScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(gpsScatter)
	p.Legend.Add("GPS", gpsScatter)

	odomScatter, err := plotter.NewScatter(odom)
	if err != nil {
		return nil, err
	}
	odomScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 255}
	odomScatter.Shape = draw.CrossGlyph{}
	odomScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(odomScatter)
	p.Legend.Add("Odometry", odomScatter)

	fusedLine, err := plotter.NewLine(fused)
	if err != nil {
		return nil, err
	}
	fusedLine.Color = color.RGBA{B: 255, A: 255}

	p.Add(fusedLine)
	p.Legend.Add("Kalman Filter Output", fusedLine)

	return p, nil
}

// NewHeadingPlot creates a plot of the vehicle heading over step
// index: IMU headings as red dots, odometry headings as green crosses
// and the filtered heading history as a blue line.
// It returns error if src is nil or empty, the history is empty or a
// plotter fails to be created.
func NewHeadingPlot(src posefuse.FrameSource, history []mat.Vector) (*plot.Plot, error) {
	if src == nil || src.Len() == 0 {
		return nil, fmt.Errorf("invalid frame source: %v", src)
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("empty state history")
	}

	p := plot.New()

	p.Title.Text = "Heading"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Heading"
	p.Legend.Top = true

	imu := make(plotter.XYs, src.Len())
	odom := make(plotter.XYs, src.Len())
	for i := 0; i < src.Len(); i++ {
		f := src.Frame(i)
		imu[i].X, imu[i].Y = float64(i), f.IMUHeading
		odom[i].X, odom[i].Y = float64(i), f.OdomHeading
	}

	fused := make(plotter.XYs, len(history))
	for i, x := range history {
		fused[i].X = float64(i)
		fused[i].Y = x.AtVec(posefuse.StateHeading)
	}

	imuScatter, err := plotter.NewScatter(imu)
	if err != nil {
		return nil, err
	}
	imuScatter.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	imuScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(imuScatter)
	p.Legend.Add("IMU", imuScatter)

	odomScatter, err := plotter.NewScatter(odom)
	if err != nil {
		return nil, err
	}
	odomScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 255}
	odomScatter.Shape = draw.CrossGlyph{}
	odomScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(odomScatter)
	p.Legend.Add("Odometry", odomScatter)

	fusedLine, err := plotter.NewLine(fused)
	if err != nil {
		return nil, err
	}
	fusedLine.Color = color.RGBA{B: 255, A: 255}

	p.Add(fusedLine)
	p.Legend.Add("Kalman Filter Output", fusedLine)

	return p, nil
}
