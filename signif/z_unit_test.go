package signif

import (
	"math"
	"testing"
)

func TestZPoissonDegenerate(t *testing.T) {
	cases := [][2]float64{{0, 10}, {-1, 10}, {5, 0}, {5, -3}, {0, 0}, {math.NaN(), 5}}
	for _, c := range cases {
		if z := ZPoisson(c[0], c[1], 0, 0); z != 0 {
			t.Fatalf("ZPoisson(%v,%v) = %v, want exactly 0", c[0], c[1], z)
		}
		if z := ZPoisson(c[0], c[1], 0.1, 0.2); z != 0 {
			t.Fatalf("ZPoisson(%v,%v,0.1,0.2) = %v, want exactly 0", c[0], c[1], z)
		}
	}
}

func TestZPoissonSimpleBranch(t *testing.T) {
	s, b := 100.0, 20.0
	n := s + b
	want := math.Sqrt(2 * (n*math.Log(n/b) - (n - b)))
	got := ZPoisson(s, b, 0, 0)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %.12f want %.12f", got, want)
	}
	// 以封閉解為準：sqrt(2*(120*ln6 - 100))
	if math.Abs(got-15.1665) > 1e-4 {
		t.Fatalf("Z(100,20) = %.4f, want 15.1665", got)
	}
}

func TestZPoissonSystematicLowers(t *testing.T) {
	s, b := 100.0, 20.0
	zb := ZPoisson(s, b, 0, 0)
	zc := ZPoisson(s, b, 0, 0.2)

	// sigma = 0.2*20 = 4，走完整公式
	n := s + b
	sg := 4.0
	f1 := n * math.Log(n*(b+sg*sg)/(b*b+n*sg*sg))
	f2 := (b * b / (sg * sg)) * math.Log(1+sg*sg*(n-b)/(b*(b+sg*sg)))
	want := math.Sqrt(2 * (f1 - f2))
	if math.Abs(zc-want) > 1e-12 {
		t.Fatalf("full formula got %.12f want %.12f", zc, want)
	}
	if !(zc < zb) {
		t.Fatalf("syst should lower significance: %.4f >= %.4f", zc, zb)
	}

	prev := zb
	for _, syst := range []float64{0.05, 0.1, 0.2, 0.3, 0.5, 1.0} {
		z := ZPoisson(s, b, 0, syst)
		if z > prev {
			t.Fatalf("significance should not grow with syst: syst=%.2f z=%.6f prev=%.6f", syst, z, prev)
		}
		prev = z
	}
}

func TestZPoissonStatSystQuadrature(t *testing.T) {
	// stat 與 syst 以平方和合併：(0.3,0.4) 等價於 (0,0.5)
	a := ZPoisson(30, 50, 0.3, 0.4)
	b := ZPoisson(30, 50, 0, 0.5)
	if math.Abs(a-b) > 1e-12 {
		t.Fatalf("quadrature mismatch: %.12f vs %.12f", a, b)
	}
}

func TestZPoissonIncreasingInS(t *testing.T) {
	for _, b := range []float64{0.5, 1, 10, 1000} {
		prev := 0.0
		for s := 0.1; s < 1e5; s *= 1.7 {
			z := ZPoisson(s, b, 0, 0)
			if math.IsNaN(z) || math.IsInf(z, 0) || z < 0 {
				t.Fatalf("Z(%g,%g) not finite/non-negative: %v", s, b, z)
			}
			if !(z > prev) {
				t.Fatalf("Z not strictly increasing in s at b=%g s=%g: %v <= %v", b, s, z, prev)
			}
			prev = z
		}
	}
}

func TestSimpleZ(t *testing.T) {
	if got := SimpleZ(10, 25); got != 2 {
		t.Fatalf("SimpleZ(10,25) = %v", got)
	}
	if SimpleZ(10, 0) != 0 {
		t.Fatalf("SimpleZ with b=0 should be 0")
	}
}
