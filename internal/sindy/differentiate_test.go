package sindy

import (
	"errors"
	"math"
	"testing"
)

func TestFiniteDifferenceQuadratic(t *testing.T) {
	// x(t) = t^2 has exact second-order differences everywhere.
	n := 11
	ts := make([]float64, n)
	x := make([][]float64, n)
	for i := 0; i < n; i++ {
		ts[i] = 0.1 * float64(i)
		x[i] = []float64{ts[i] * ts[i]}
	}

	xDot, err := FiniteDifference(x, ts)
	if err != nil {
		t.Fatalf("finite difference: %v", err)
	}
	for i := 0; i < n; i++ {
		want := 2 * ts[i]
		if math.Abs(xDot[i][0]-want) > 1e-9 {
			t.Fatalf("sample %d: want %v got %v", i, want, xDot[i][0])
		}
	}
}

func TestFiniteDifferenceTooFewSamples(t *testing.T) {
	x := [][]float64{{1}, {2}}
	_, err := FiniteDifference(x, []float64{0, 1})
	if !errors.Is(err, ErrTooFewSamples) {
		t.Fatalf("want ErrTooFewSamples, got %v", err)
	}
}

func TestTimeSpecVector(t *testing.T) {
	unit, err := TimeSpec{}.Vector(3)
	if err != nil {
		t.Fatalf("unit spec: %v", err)
	}
	if unit[0] != 0 || unit[1] != 1 || unit[2] != 2 {
		t.Fatalf("unit spacing: got %v", unit)
	}

	stepped, err := TimeSpec{Step: 0.5}.Vector(3)
	if err != nil {
		t.Fatalf("step spec: %v", err)
	}
	if stepped[2] != 1.0 {
		t.Fatalf("step spacing: got %v", stepped)
	}

	explicit, err := TimeSpec{Points: []float64{0, 1, 4}}.Vector(3)
	if err != nil {
		t.Fatalf("points spec: %v", err)
	}
	if explicit[2] != 4 {
		t.Fatalf("explicit points: got %v", explicit)
	}

	if _, err := (TimeSpec{Points: []float64{0, 1}}).Vector(3); err == nil {
		t.Fatal("expected error for mismatched time vector")
	}
	if _, err := (TimeSpec{Step: -1}).Vector(3); err == nil {
		t.Fatal("expected error for negative step")
	}
}

func TestTimeSpecSlice(t *testing.T) {
	ts := TimeSpec{Points: []float64{0, 1, 2, 3, 4}}
	head := ts.Slice(0, 4)
	if len(head.Points) != 4 {
		t.Fatalf("head slice: got %d points", len(head.Points))
	}
	tail := ts.Slice(4, 5)
	if len(tail.Points) != 1 || tail.Points[0] != 4 {
		t.Fatalf("tail slice: got %v", tail.Points)
	}

	stepped := TimeSpec{Step: 0.1}.Slice(2, 5)
	if len(stepped.Points) != 3 {
		t.Fatalf("step slice: got %v", stepped.Points)
	}
	if math.Abs(stepped.Points[0]-0.2) > 1e-12 || math.Abs(stepped.Points[2]-0.4) > 1e-12 {
		t.Fatalf("step slice lost its offset: got %v", stepped.Points)
	}

	unit := TimeSpec{}.Slice(3, 5)
	if len(unit.Points) != 2 || unit.Points[0] != 3 || unit.Points[1] != 4 {
		t.Fatalf("unit slice: got %v", unit.Points)
	}
}
