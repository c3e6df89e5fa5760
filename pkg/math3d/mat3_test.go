package math3d

import (
	"math"
	"testing"
)

func TestMat3Inverse(t *testing.T) {
	m := Mat3FromRows(V3(2, 0, 1), V3(1, 3, 0), V3(0, 1, 4))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("expected invertible matrix")
	}
	for _, v := range []Vec3{V3(1, 0, 0), V3(0, 1, 0), V3(1, 2, 3)} {
		if got := inv.MulVec3(m.MulVec3(v)); !vecNear(got, v, 1e-12) {
			t.Errorf("inv(m)*m*%v = %v", v, got)
		}
	}

	singular := Mat3FromRows(V3(1, 2, 3), V3(2, 4, 6), V3(0, 0, 1))
	if _, ok := singular.Inverse(); ok {
		t.Error("singular matrix should not invert")
	}
}

func TestMat3FromCols(t *testing.T) {
	a, b, c := V3(1, 2, 3), V3(4, 5, 6), V3(7, 8, 9)
	m := Mat3FromCols(a, b, c)
	if got := m.MulVec3(V3(0, 1, 0)); got != b {
		t.Errorf("second column = %v, want %v", got, b)
	}
	if m.Det() != Mat3FromRows(a, b, c).Det() {
		t.Error("determinant should be invariant under transposition")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0.5, 0, 1, 0.5},
		{math.Inf(-1), 0, 255, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
	if got := Clamp(300, 0, 255); got != 255 {
		t.Errorf("Clamp int = %d, want 255", got)
	}
}

func TestVec3Reflect(t *testing.T) {
	n := V3(0, 0, 1)
	l := V3(1, 0, 1).Normalize()
	r := l.Reflect(n)
	want := V3(-l.X, 0, l.Z)
	if !vecNear(r, want, 1e-12) {
		t.Errorf("reflect = %v, want %v", r, want)
	}
}

func TestWeighted(t *testing.T) {
	a, b, c := V3(0, 0, 0), V3(10, 0, 0), V3(0, 10, 0)
	got := Weighted(a, b, c, V3(0.4, 0.3, 0.3))
	if !vecNear(got, V3(3, 3, 0), 1e-12) {
		t.Errorf("Weighted = %v, want (3,3,0)", got)
	}
	uv := Weighted2(V2(0, 0), V2(1, 0), V2(0, 1), V3(0.5, 0.25, 0.25))
	if math.Abs(uv.X-0.25) > 1e-12 || math.Abs(uv.Y-0.25) > 1e-12 {
		t.Errorf("Weighted2 = %v", uv)
	}
}
