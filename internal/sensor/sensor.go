// Package sensor provides the reading source for the publishing loop.
//
// The agent treats the sensor as an external collaborator behind the narrow
// Producer interface. The Simulated producer ships with the agent for bench
// and soak testing; a hardware-backed producer satisfies the same interface.
package sensor

import "math/rand"

// Reading is a single sensor sample. Immutable once produced; it carries no
// identity of its own. Identity is assigned when the telemetry event is built.
type Reading struct {
	Temperature float64
	Humidity    float64
}

// Producer supplies one reading per publishing cycle.
type Producer interface {
	Read() (Reading, error)
}

// Default simulated ranges, matching the reference device profile.
const (
	defaultTempMin     = 22.0
	defaultTempMax     = 30.0
	defaultHumidityMin = 35.0
	defaultHumidityMax = 65.0
)

// Simulated produces uniformly distributed readings within fixed ranges.
// Temperature is rounded to 2 decimal places, humidity to 1.
type Simulated struct {
	TempMin, TempMax         float64
	HumidityMin, HumidityMax float64
}

// NewSimulated returns a Simulated producer with the default ranges
// (22.0–30.0 °C, 35.0–65.0 %RH).
func NewSimulated() *Simulated {
	return &Simulated{
		TempMin:     defaultTempMin,
		TempMax:     defaultTempMax,
		HumidityMin: defaultHumidityMin,
		HumidityMax: defaultHumidityMax,
	}
}

// Read implements Producer. It never fails.
func (s *Simulated) Read() (Reading, error) {
	return Reading{
		Temperature: round(s.TempMin+rand.Float64()*(s.TempMax-s.TempMin), 2),
		Humidity:    round(s.HumidityMin+rand.Float64()*(s.HumidityMax-s.HumidityMin), 1),
	}, nil
}

// round rounds v to the given number of decimal places.
func round(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	if v >= 0 {
		return float64(int64(v*scale+0.5)) / scale
	}
	return float64(int64(v*scale-0.5)) / scale
}
