package yield

import (
	"testing"
)

func TestProjectDoesNotMutate(t *testing.T) {
	curve := []float64{0.25, 0.5, 1}
	got := Project(curve, 8, 0.5)
	want := []float64{1, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pos %d got %v want %v", i, got[i], want[i])
		}
	}
	if curve[0] != 0.25 {
		t.Fatalf("input mutated: %v", curve)
	}
}

func TestSum(t *testing.T) {
	s, err := Sum([]float64{1, 2}, []float64{3, 4}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s[0] != 4.5 || s[1] != 6.5 {
		t.Fatalf("unexpected sum %v", s)
	}
	if _, err := Sum([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatalf("length mismatch should fail")
	}
	if _, err := Sum(); err == nil {
		t.Fatalf("empty sum should fail")
	}
}

func TestBuild(t *testing.T) {
	sig := Component{Label: "tthh", Curve: []float64{0.5, 1}, Count: 4, Scale: 2}
	bgs := []Component{
		{Label: "ttbb", Curve: []float64{0.1, 1}, Count: 100, Scale: 1},
		{Label: "ttz", Curve: []float64{0, 1}, Count: 10, Scale: 0.5},
	}
	c, err := Build(sig, bgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Signal[0] != 4 || c.Signal[1] != 8 {
		t.Fatalf("signal %v", c.Signal)
	}
	if c.Background[0] != 10 || c.Background[1] != 105 {
		t.Fatalf("background %v", c.Background)
	}
	if l := c.Labels(); len(l) != 2 || l[0] != "ttbb" || l[1] != "ttz" {
		t.Fatalf("labels %v", l)
	}
	if at := c.At(1); at["ttz"] != 5 || at["ttbb"] != 100 {
		t.Fatalf("At(1) %v", at)
	}

	if _, err := Build(sig, nil); err == nil {
		t.Fatalf("no background should fail")
	}
	bad := []Component{{Label: "x", Curve: []float64{1}, Count: 1, Scale: 1}}
	if _, err := Build(sig, bad); err == nil {
		t.Fatalf("length mismatch should fail")
	}
	dup := []Component{bgs[0], bgs[0]}
	if _, err := Build(sig, dup); err == nil {
		t.Fatalf("duplicate label should fail")
	}
}
