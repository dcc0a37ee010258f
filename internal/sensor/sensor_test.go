package sensor

import (
	"math"
	"testing"
)

func TestSimulated_ReadWithinRanges(t *testing.T) {
	s := NewSimulated()

	for i := 0; i < 1000; i++ {
		r, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if r.Temperature < s.TempMin || r.Temperature > s.TempMax {
			t.Fatalf("Temperature = %v, want within [%v, %v]", r.Temperature, s.TempMin, s.TempMax)
		}
		if r.Humidity < s.HumidityMin || r.Humidity > s.HumidityMax {
			t.Fatalf("Humidity = %v, want within [%v, %v]", r.Humidity, s.HumidityMin, s.HumidityMax)
		}
	}
}

func TestSimulated_ReadPrecision(t *testing.T) {
	s := NewSimulated()

	for i := 0; i < 100; i++ {
		r, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		// Temperature rounded to 2 dp, humidity to 1 dp.
		if got := r.Temperature * 100; math.Abs(got-math.Round(got)) > 1e-6 {
			t.Fatalf("Temperature = %v, want 2 decimal places", r.Temperature)
		}
		if got := r.Humidity * 10; math.Abs(got-math.Round(got)) > 1e-6 {
			t.Fatalf("Humidity = %v, want 1 decimal place", r.Humidity)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{22.456, 2, 22.46},
		{22.454, 2, 22.45},
		{64.95, 1, 65.0},
		{35.04, 1, 35.0},
		{30.0, 2, 30.0},
	}

	for _, tt := range tests {
		if got := round(tt.v, tt.places); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}
