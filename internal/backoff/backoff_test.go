package backoff

import (
	"testing"
	"time"
)

func TestNext_DoublesUntilCap(t *testing.T) {
	b := New(Policy{Initial: 1 * time.Second, Max: 30 * time.Second})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},  // First attempt: base delay
		{2, 2 * time.Second},  // 2nd: 1s * 2
		{3, 4 * time.Second},  // 3rd: 1s * 4
		{4, 8 * time.Second},  // 4th: 1s * 8
		{5, 16 * time.Second}, // 5th: 1s * 16
		{6, 30 * time.Second}, // 6th: capped at max
		{7, 30 * time.Second}, // 7th: stays at max
	}

	for _, tt := range tests {
		got := b.Next()
		if got != tt.want {
			t.Errorf("Next() attempt %d = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestNext_NonDecreasing(t *testing.T) {
	b := New(Policy{Initial: 250 * time.Millisecond, Max: 5 * time.Second})

	prev := time.Duration(0)
	for i := 0; i < 20; i++ {
		got := b.Next()
		if got < prev {
			t.Fatalf("Next() decreased at attempt %d: %v < %v", i+1, got, prev)
		}
		if got > 5*time.Second {
			t.Fatalf("Next() exceeded cap at attempt %d: %v", i+1, got)
		}
		prev = got
	}
}

func TestReset_ReturnsToInitial(t *testing.T) {
	b := New(Policy{Initial: 1 * time.Second, Max: 60 * time.Second})

	for i := 0; i < 5; i++ {
		b.Next()
	}

	b.Reset()

	if b.Attempts() != 0 {
		t.Errorf("Attempts() after Reset = %d, want 0", b.Attempts())
	}
	if got := b.Next(); got != 1*time.Second {
		t.Errorf("Next() after Reset = %v, want initial delay", got)
	}
}

func TestNew_DefaultsAppliedForInvalidPolicy(t *testing.T) {
	tests := []struct {
		name        string
		policy      Policy
		wantInitial time.Duration
	}{
		{
			name:        "zero initial",
			policy:      Policy{Initial: 0, Max: 10 * time.Second},
			wantInitial: 1 * time.Second,
		},
		{
			name:        "max below initial",
			policy:      Policy{Initial: 5 * time.Second, Max: 1 * time.Second},
			wantInitial: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.policy)
			if got := b.Next(); got != tt.wantInitial {
				t.Errorf("Next() = %v, want %v", got, tt.wantInitial)
			}
			// With max raised to initial, delays stay flat.
			if got := b.Next(); got < tt.wantInitial {
				t.Errorf("second Next() = %v, want >= %v", got, tt.wantInitial)
			}
		})
	}
}
