package mathx

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, -1, 1, 0.5},
		{2, -1, 1, 1},
		{-3, -1, 1, -1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v): expected %v, got %v", tt.v, tt.lo, tt.hi, tt.want, got)
		}
	}
	if got := Clamp(7, 0, 5); got != 5 {
		t.Errorf("expected int clamp 5, got %d", got)
	}
}

func TestMapRange(t *testing.T) {
	if got := MapRange(0.5, 0, 1, -30, 30); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := MapRange(-1.0, -1, 1, -25, 25); got != -25 {
		t.Errorf("expected -25, got %v", got)
	}
	if got := MapRange[uint32](1500, 1000, 2000, 0, 100); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
}

func TestAbs(t *testing.T) {
	if Abs(-2.5) != 2.5 || Abs(3) != 3 {
		t.Error("unexpected Abs result")
	}
}
