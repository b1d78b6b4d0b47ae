package sample

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/cutlab/errs"
)

func TestParseClass(t *testing.T) {
	for _, s := range []string{"signal", "SIG", " s "} {
		if c, err := ParseClass(s); err != nil || c != Signal {
			t.Fatalf("ParseClass(%q) = %v, %v", s, c, err)
		}
	}
	for _, s := range []string{"background", "bkg", "BG"} {
		if c, err := ParseClass(s); err != nil || c != Background {
			t.Fatalf("ParseClass(%q) = %v, %v", s, c, err)
		}
	}
	if _, err := ParseClass("data"); err == nil {
		t.Fatalf("expected error for unknown class")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		s    Sample
		want error
	}{
		{"ok", Sample{Label: "a", Scores: []float64{0.1}, ScaleFactor: 1}, nil},
		{"empty", Sample{Label: "a", ScaleFactor: 1}, errs.ErrEmptySample},
		{"mismatch", Sample{Label: "a", Scores: []float64{0.1, 0.2}, Weights: []float64{1}, ScaleFactor: 1}, errs.ErrLengthMismatch},
	}
	for _, c := range cases {
		err := c.s.Validate()
		if c.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", c.name, err)
			}
			continue
		}
		if !errors.Is(err, c.want) {
			t.Fatalf("%s: got %v want %v", c.name, err, c.want)
		}
		if errs.Level(err) != errs.Warn {
			t.Fatalf("%s: want warn level", c.name)
		}
	}

	bad := []Sample{
		{Label: "", Scores: []float64{0.1}},
		{Label: "a", Scores: []float64{math.NaN()}},
		{Label: "a", Scores: []float64{0.1}, Weights: []float64{math.Inf(1)}},
		{Label: "a", Scores: []float64{0.1}, ScaleFactor: -1},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Fatalf("bad[%d]: expected error", i)
		}
	}
}

func TestWeights(t *testing.T) {
	s := Sample{Label: "a", Scores: []float64{0.1, 0.2, 0.3}}
	if s.SumWeights() != 3 || s.Weight(1) != 1 {
		t.Fatalf("unit weights expected")
	}
	s.Weights = []float64{0.5, -0.25, 2}
	if s.SumWeights() != 2.25 {
		t.Fatalf("sum weights = %v", s.SumWeights())
	}
	u := s.UnitWeights()
	u[0] = 99
	if s.Weights[0] != 0.5 {
		t.Fatalf("UnitWeights must return a copy")
	}
}

func TestSplit(t *testing.T) {
	samples := []Sample{
		{Label: "ttbb", Class: Background},
		{Label: "tthh", Class: Signal},
		{Label: "ttz", Class: Background},
	}
	sig, bkgs, err := Split(samples)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if sig.Label != "tthh" || len(bkgs) != 2 || bkgs[0].Label != "ttbb" {
		t.Fatalf("unexpected split: %s %v", sig.Label, bkgs)
	}
	if _, _, err := Split(samples[:1]); err == nil {
		t.Fatalf("expected error without signal")
	}
	if _, _, err := Split(samples[1:2]); err == nil {
		t.Fatalf("expected error without background")
	}
	two := append([]Sample{{Label: "x", Class: Signal}}, samples...)
	if _, _, err := Split(two); err == nil {
		t.Fatalf("expected error with two signals")
	}
}

func TestTable(t *testing.T) {
	tb := NewTable()
	err := tb.Add("tthh", map[string][]float64{
		ColScore:  {0.9, 0.2, 0.7},
		ColWeight: {1, 2, 1},
		"m_bb":    {120, 90, 125},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tb.Add("tthh", map[string][]float64{ColScore: {0.1}}); err == nil {
		t.Fatalf("expected duplicate label error")
	}
	if err := tb.Add("bad", map[string][]float64{ColScore: {0.1}, "x": {1, 2}}); err == nil {
		t.Fatalf("expected ragged columns error")
	}
	if tb.Rows("tthh") != 3 || tb.Rows("bad") != 0 {
		t.Fatalf("rows mismatch")
	}
	if got := strings.Join(tb.Variables("tthh"), ","); got != "m_bb,score,weight" {
		t.Fatalf("variables = %s", got)
	}
	if err := tb.Require("tthh", "m_bb", "met"); err == nil {
		t.Fatalf("expected missing column error")
	}

	s, err := tb.Sample("tthh", Signal, 0.5)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if s.Len() != 3 || s.SumWeights() != 4 || s.ScaleFactor != 0.5 {
		t.Fatalf("unexpected sample %+v", s)
	}

	mbb, _ := tb.Column("tthh", "m_bb")
	pass := []bool{true, false, true}
	got := Select(mbb, pass)
	if len(got) != 2 || got[0] != 120 || got[1] != 125 {
		t.Fatalf("select = %v", got)
	}
}

func TestSchemaFields(t *testing.T) {
	sc := DefaultSchema(10)
	high := sc.Fields(HighLevel)
	if len(high) != len(sc.HighLevel) {
		t.Fatalf("high level fields = %d", len(high))
	}
	obj := sc.Columns(ObjectLevel)
	if len(obj) != 2*4+10*4 {
		t.Fatalf("object level fields = %d", len(obj))
	}
	full := sc.Columns(Full)
	if len(full) != len(high)+len(obj) {
		t.Fatalf("full = %d", len(full))
	}
	for i := 1; i < len(full); i++ {
		if full[i-1] > full[i] {
			t.Fatalf("columns not sorted at %d: %s > %s", i, full[i-1], full[i])
		}
	}
	f := Field{Entity: "jet", Index: 3, Attribute: "pT"}
	if f.Column() != "jet3pT" {
		t.Fatalf("column = %s", f.Column())
	}
	if (Field{Attribute: "met"}).Column() != "met" {
		t.Fatalf("event level column")
	}
	if p, err := ParsePhase("object"); err != nil || p != ObjectLevel {
		t.Fatalf("parse phase: %v %v", p, err)
	}
	if _, err := ParsePhase("4"); err == nil {
		t.Fatalf("expected phase error")
	}
}

func TestDecode(t *testing.T) {
	yml := "label: ttz\ncolumns:\n  score: [0.1, 0.4]\n  weight: [1, 1]\n"
	f, err := Decode("ttz.yaml", strings.NewReader(yml))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if f.Label != "ttz" || len(f.Columns[ColScore]) != 2 {
		t.Fatalf("unexpected frame %+v", f)
	}

	if _, err := Decode("ttz.yaml", strings.NewReader("label: x\nbogus: 1\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := Decode("ttz.csv", strings.NewReader("")); err == nil {
		t.Fatalf("expected unsupported format error")
	}

	var buf bytes.Buffer
	in := &Frame{Label: "ttbb", Columns: map[string][]float64{ColScore: {0.3, 0.8, 0.5}}}
	if err := Encode(&buf, in, true); err != nil {
		t.Fatalf("encode: %v", err)
	}
	tb := NewTable()
	if err := tb.Load("", "ttbb.json.zst", &buf); err != nil {
		t.Fatalf("load zst: %v", err)
	}
	col, ok := tb.Column("ttbb", ColScore)
	if !ok || len(col) != 3 || col[1] != 0.8 {
		t.Fatalf("column after zst round trip = %v", col)
	}
}

func TestGenerator(t *testing.T) {
	g := &Generator{Events: 500, Alpha: 5, Beta: 2, Seed: 7, Features: map[string]Gaussian{"m_bb": {Mean: 120, Sigma: 15}}}
	f1, err := g.Frame("tthh")
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	f2, _ := g.Frame("tthh")
	for i, x := range f1.Columns[ColScore] {
		if x < 0 || x > 1 {
			t.Fatalf("beta score out of [0,1]: %v", x)
		}
		if f2.Columns[ColScore][i] != x {
			t.Fatalf("same seed must reproduce scores")
		}
	}
	if len(f1.Columns["m_bb"]) != 500 || f1.Columns[ColWeight][3] != 1 {
		t.Fatalf("unexpected columns")
	}
	mean := 0.0
	for _, x := range f1.Columns[ColScore] {
		mean += x
	}
	mean /= 500
	if mean < 0.6 || mean > 0.82 {
		t.Fatalf("Beta(5,2) sample mean %.3f far from 0.714", mean)
	}

	bad := []Generator{
		{Events: 0, Alpha: 1, Beta: 1},
		{Events: 1, Alpha: 0, Beta: 1},
		{Events: 1, Alpha: 1, Beta: 1, Features: map[string]Gaussian{"x": {Sigma: 0}}},
		{Events: 1, Alpha: 1, Beta: 1, Features: map[string]Gaussian{ColScore: {Sigma: 1}}},
	}
	for i := range bad {
		if _, err := bad[i].Frame("x"); err == nil {
			t.Fatalf("bad[%d]: expected error", i)
		}
	}
}
