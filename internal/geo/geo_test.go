package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/tormentor-esp/extension/pkg/core"
)

func TestPositionFromString_ValidWithElevation(t *testing.T) {
	pos, err := PositionFromString("100.5,200.25,50.0")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.X != 100.5 {
		t.Errorf("expected X=100.5, got %f", pos.X)
	}
	if pos.Y != 200.25 {
		t.Errorf("expected Y=200.25, got %f", pos.Y)
	}
	if pos.Z != 50.0 {
		t.Errorf("expected Z=50.0, got %f", pos.Z)
	}
}

func TestPositionFromString_ValidWithoutElevation(t *testing.T) {
	pos, err := PositionFromString("-7200,-1500")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != (core.Position3D{X: -7200, Y: -1500}) {
		t.Errorf("unexpected position %+v", pos)
	}
}

func TestPositionFromString_BracketsAndSpaces(t *testing.T) {
	pos, err := PositionFromString("[ 1, 2, 3 ]")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != (core.Position3D{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected position %+v", pos)
	}
}

func TestPositionFromString_Invalid(t *testing.T) {
	for _, input := range []string{"", "1", "a,2", "1,b", "1,2,c", "NaN,NaN,0", "Inf,0", "0,-Inf", "1,2,NaN"} {
		_, err := PositionFromString(input)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("input %q: expected ErrInvalidCoordinates, got %v", input, err)
		}
	}
}

func TestDistance2D_IgnoresElevation(t *testing.T) {
	a := core.Position3D{X: 0, Y: 0, Z: 0}
	b := core.Position3D{X: 3, Y: 4, Z: 900}

	if d := Distance2D(a, b); math.Abs(d-5) > 1e-9 {
		t.Errorf("expected distance 5, got %f", d)
	}
}

func TestWithin(t *testing.T) {
	spawner := core.Position3D{X: -8000, Y: 1200, Z: 256}

	tests := []struct {
		name string
		boss core.Position3D
		want bool
	}{
		{"exact", spawner, true},
		{"inside", core.Position3D{X: -8100, Y: 1200}, true},
		{"on the edge", core.Position3D{X: -8000, Y: 1450}, true},
		{"outside", core.Position3D{X: -8000, Y: 1451}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Within(spawner, tt.boss, 250); got != tt.want {
				t.Errorf("Within() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPoint_NonFinite(t *testing.T) {
	if _, err := Point(core.Position3D{X: 1, Y: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := Point(core.Position3D{X: math.NaN(), Y: 0})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestDistance2D_NonFiniteIsOutOfRange(t *testing.T) {
	spawner := core.Position3D{X: -7232, Y: -1472}
	for _, boss := range []core.Position3D{
		{X: math.NaN(), Y: math.NaN()},
		{X: math.Inf(1), Y: 0},
		{X: 0, Y: math.Inf(-1)},
	} {
		if d := Distance2D(spawner, boss); !math.IsInf(d, 1) {
			t.Errorf("boss %+v: expected +Inf distance, got %f", boss, d)
		}
		if Within(spawner, boss, 250) {
			t.Errorf("boss %+v: expected out of range", boss)
		}
	}
}
