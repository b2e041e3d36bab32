// ABOUTME: Tests for level calculation
// ABOUTME: Tests RMS, decibel conversion and monotonicity
package level

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestComputeRMSSilence(t *testing.T) {
	for _, n := range []int{1, 4, 1024, 44100} {
		samples := make([]int16, n)
		if rms := ComputeRMS(samples); rms != 0 {
			t.Errorf("n=%d: expected 0, got %f", n, rms)
		}
	}
}

func TestComputeRMS(t *testing.T) {
	tests := []struct {
		name     string
		samples  []int16
		expected float64
	}{
		{"symmetric full scale", []int16{32767, -32767}, 32767},
		{"single sample", []int16{-5}, 5},
		{"constant", []int16{100, 100, 100, 100}, 100},
		{"mixed", []int16{3, 4}, math.Sqrt(12.5)},
		{"min sample", []int16{-32768}, 32768},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeRMS(tt.samples)
			if math.Abs(result-tt.expected) > tolerance {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestRMSToDecibels(t *testing.T) {
	if db := RMSToDecibels(0); !math.IsInf(db, -1) {
		t.Errorf("expected -Inf for zero rms, got %f", db)
	}

	tests := []struct {
		rms      float64
		expected float64
	}{
		{1, 0},
		{0.5, -6.020599913279624},
		{10, 20},
		{32768, MaxDecibels},
	}

	for _, tt := range tests {
		result := RMSToDecibels(tt.rms)
		if math.Abs(result-tt.expected) > 1e-6 {
			t.Errorf("rms=%f: expected %f, got %f", tt.rms, tt.expected, result)
		}
	}
}

func TestMeasureMonotonic(t *testing.T) {
	base := []int16{10, -20, 30, -40, 50, -60, 70, -80}

	prev := math.Inf(-1)
	for _, factor := range []int16{0, 1, 2, 5, 10, 100, 400} {
		scaled := make([]int16, len(base))
		for i, s := range base {
			scaled[i] = s * factor
		}

		db := Measure(scaled).Decibels
		if db < prev {
			t.Errorf("factor %d: level decreased from %f to %f", factor, prev, db)
		}
		prev = db
	}
}

func TestMeasure(t *testing.T) {
	r := Measure([]int16{1, -1, 1, -1})
	if r.RMS != 1 {
		t.Errorf("expected rms 1, got %f", r.RMS)
	}
	if r.Decibels != 0 {
		t.Errorf("expected 0 dB, got %f", r.Decibels)
	}

	silent := Measure([]int16{0, 0, 0, 0})
	if !math.IsInf(silent.Decibels, -1) {
		t.Errorf("expected -Inf for silence, got %f", silent.Decibels)
	}
}
