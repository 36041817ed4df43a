package optctl

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestCopyVec(t *testing.T) {
	if copyVec(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	a := []float64{1, 2}
	b := copyVec(a)
	b[0] = 3
	if a[0] != 1 {
		t.Fatal("copy shares memory")
	}
	if !vecEqual([]float64{}, nil) || vecEqual([]float64{1}, []float64{1, 2}) || !vecEqual(a, []float64{1, 2}) {
		t.Fatal("vecEqual fail")
	}
}

func TestBlocks(t *testing.T) {
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {0, 0}} {
		if r, c := newBlock(dims[0], dims[1]).Dims(); r != 0 || c != 0 {
			t.Fatalf("%v block is %dx%d", dims, r, c)
		}
	}
	if r, c := newBlock(2, 3).Dims(); r != 2 || c != 3 {
		t.Fatal("2x3 block")
	}
	if r, c := denseCopy(nil).Dims(); r != 0 || c != 0 {
		t.Fatal("nil copy")
	}
	m := mat.NewDense(2, 2, []float64{1, 0, 0, -2})
	cp := denseCopy(m)
	m.Set(0, 0, 5)
	if cp.At(0, 0) != 1 {
		t.Fatal("copy shares memory")
	}
	if countNonZeros(cp) != 2 || countNonZeros(&mat.Dense{}) != 0 {
		t.Fatal("countNonZeros fail")
	}
}

func TestNilDense(t *testing.T) {
	var missing *mat.Dense
	if r, c := dims(missing); r != 0 || c != 0 {
		t.Fatalf("nil *mat.Dense is %dx%d", r, c)
	}
	if r, c := dims(&mat.Dense{}); r != 0 || c != 0 {
		t.Fatalf("empty *mat.Dense is %dx%d", r, c)
	}
	if r, c := denseCopy(missing).Dims(); r != 0 || c != 0 {
		t.Fatal("nil *mat.Dense copy")
	}
	if r, c := dims(mat.NewDense(2, 3, nil).T()); r != 3 || c != 2 {
		t.Fatal("other matrix types keep their dimensions")
	}
}

func TestFirstNonFinite(t *testing.T) {
	if i := firstNonFinite([]float64{1, 2, 3}); i != -1 {
		t.Fatalf("found %d", i)
	}
	if i := firstNonFinite([]float64{1, math.Inf(-1), math.NaN()}); i != 2 {
		t.Fatalf("NaN is reported first, got %d", i)
	}
	if i := firstNonFinite([]float64{1, math.Inf(1)}); i != 1 {
		t.Fatalf("found %d", i)
	}
}

func TestForwardDiff(t *testing.T) {
	dst := make([]float64, 2)
	forwardDiff(dst, []float64{1.5, 2}, []float64{1, 2}, 0.5)
	if !floats.Equal(dst, []float64{1, 0}) {
		t.Fatalf("got %v", dst)
	}
}

func TestUniform(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		if v := uniform(src, -5, 2); v < -5 || v > 2 {
			t.Fatalf("%f out of bounds", v)
		}
	}
	if uniform(src, 3, 3) != 3 {
		t.Fatal("degenerate interval")
	}
	a, b := newSource(9), newSource(9)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("seeded sources differ")
		}
	}
}
