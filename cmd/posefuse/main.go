package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	posefuse "github.com/statespace/go-posefuse"
	"github.com/statespace/go-posefuse/frame"
	"github.com/statespace/go-posefuse/kalman"
	"github.com/statespace/go-posefuse/sim"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"
)

var outDir string

func init() {
	flag.StringVar(&outDir, "out", ".", "Directory to save the output plots to")
}

// variant is one filter configuration to run over the sensor data
type variant struct {
	name string
	desc string
	cfg  posefuse.Config
}

func variants() []variant {
	gpsCov := [2]float64{0.01, 0.01}
	imuCov := 0.1
	tightGPSCov := [2]float64{1e-6, 1e-6}
	gpsSigma := 1.0

	normal := posefuse.DefaultConfig()

	gpsOverride := posefuse.DefaultConfig()
	gpsOverride.GPSVarOverride = &gpsCov

	imuOverride := posefuse.DefaultConfig()
	imuOverride.IMUVarOverride = &imuCov

	gpsNoise := posefuse.DefaultConfig()
	gpsNoise.GPSVarOverride = &tightGPSCov
	gpsNoise.GPSNoiseSigma = &gpsSigma

	return []variant{
		{name: "normal", desc: "no changes to covariance or data", cfg: normal},
		{name: "gps_cov", desc: "GPS covariance set to (0.01, 0.01)", cfg: gpsOverride},
		{name: "imu_cov", desc: "IMU covariance set to 0.1", cfg: imuOverride},
		{name: "gps_noise", desc: "GPS covariance set to (1e-6, 1e-6), noise added with sigma 1", cfg: gpsNoise},
	}
}

func run(path string, v variant) error {
	// every variant owns an independent series: the filter applies
	// overrides and noise injection to it at construction
	series, err := frame.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load sensor data: %v", err)
	}

	f, err := kalman.New(series, v.cfg)
	if err != nil {
		return fmt.Errorf("failed to create filter: %v", err)
	}

	if err := f.Run(); err != nil {
		return fmt.Errorf("filter run failed: %v", err)
	}

	final := f.Latest().Val()
	log.Printf("%s: %d steps, final state: %v", v.name, series.Len(),
		mat.Formatted(final.T(), mat.Prefix(""), mat.Squeeze()))

	position, err := sim.NewPositionPlot(series, f.History())
	if err != nil {
		return fmt.Errorf("failed to create position plot: %v", err)
	}

	name := filepath.Join(outDir, v.name+"_position.png")
	if err := position.Save(6*vg.Inch, 6*vg.Inch, name); err != nil {
		return fmt.Errorf("failed to save %s: %v", name, err)
	}

	heading, err := sim.NewHeadingPlot(series, f.History())
	if err != nil {
		return fmt.Errorf("failed to create heading plot: %v", err)
	}

	name = filepath.Join(outDir, v.name+"_heading.png")
	if err := heading.Save(6*vg.Inch, 6*vg.Inch, name); err != nil {
		return fmt.Errorf("failed to save %s: %v", name, err)
	}

	return nil
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("Usage: %s [-out dir] <sensor data csv>", filepath.Base(flag.CommandLine.Name()))
	}

	path := flag.Arg(0)

	for _, v := range variants() {
		log.Printf("running filter: %s (%s)", v.name, v.desc)
		if err := run(path, v); err != nil {
			log.Fatalf("%s: %v", v.name, err)
		}
	}
}
