package window

import (
	"math"
	"testing"
)

// checkSumMatchesScaling checks Generate's normalization invariant:
// "sum(w) == scaling" up to floating point rounding.
func checkSumMatchesScaling(w []float64, scaling float64) bool {
	return math.Abs(Sum(w)-scaling) < 1e-9*math.Max(1, math.Abs(scaling))
}

func TestGenerateRectangularNormalization(t *testing.T) {
	w, err := Generate(TypeRectangular, 16, 2.5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(w) != 16 {
		t.Fatalf("len = %d, want 16", len(w))
	}
	if !checkSumMatchesScaling(w, 2.5) {
		t.Fatalf("sum(w) = %v, want %v", Sum(w), 2.5)
	}
	for i, v := range w {
		if v != w[0] {
			t.Fatalf("w[%d] = %v, not constant (w[0] = %v)", i, v, w[0])
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	if _, err := Generate(TypeRectangular, 0, 1); err != ErrInvalidLength {
		t.Fatalf("err = %v, want ErrInvalidLength", err)
	}
	if _, err := Generate(Type(99), 8, 1); err != ErrUnknownType {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
}
