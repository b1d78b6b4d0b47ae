// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/cutlab/stats"
)

func buildReport() *stats.ScanReport {
	return &stats.ScanReport{
		Summary: &stats.SummaryReport{
			Analysis:        "tthh",
			NumBins:         4,
			Hi:              1,
			BackgroundFloor: 10,
			Index:           2,
			Position:        1,
			Threshold:       0.5,
			Significance:    1.5,
			Signal:          4,
			Background:      16,
		},
		Samples: []*stats.SampleReport{
			{Label: "tthh", Class: "signal", Events: 100, Passed: 40, Yield: 4},
			{Label: "ttbb", Class: "background", Events: 1000, Passed: 0, Yield: 16},
		},
		Curves: &stats.CurveReport{
			TP:            []float64{1, 4, 8, 10},
			FP:            []float64{2, 16, 80, 160},
			SignalEff:     []float64{0.1, 0.4, 0.8, 1},
			BackgroundEff: []float64{0.0125, 0.1, 0.5, 1},
			PerProcess:    map[string][]float64{"ttz": {1, 2, 3, 4}, "ttbb": {1, 14, 77, 156}},
		},
	}
}

func TestDone(t *testing.T) {
	r := buildReport()
	r.Done()
	if r.Summary.SimpleZ != 1 {
		t.Fatalf("SimpleZ = %v, want 4/sqrt(16)=1", r.Summary.SimpleZ)
	}
	if r.Summary.AUC <= 0.5 || r.Summary.AUC > 1 {
		t.Fatalf("AUC = %v, want a better-than-random value", r.Summary.AUC)
	}
	sig := r.Samples[0]
	if sig.Efficiency != 0.4 || !(sig.EffCI.Lo < 0.4 && sig.EffCI.Hi > 0.4) {
		t.Fatalf("signal eff %v ci %+v", sig.Efficiency, sig.EffCI)
	}
	bkg := r.Samples[1]
	if bkg.Efficiency != 0 || bkg.EffCI.Lo != 0 || bkg.EffCI.Hi <= 0 {
		t.Fatalf("zero-pass ci %+v", bkg.EffCI)
	}
	auc := r.Summary.AUC
	r.Done()
	if r.Summary.AUC != auc {
		t.Fatalf("Done must be idempotent")
	}
	if got := strings.Join(r.Curves.ProcessLabels(), ","); got != "ttbb,ttz" {
		t.Fatalf("labels = %s", got)
	}
}

func TestEfficiencyCI(t *testing.T) {
	p, ci := stats.EfficiencyCI(10, 10, stats.Confidence)
	if p != 1 || ci.Hi != 1 || ci.Lo >= 1 {
		t.Fatalf("all pass: p=%v ci=%+v", p, ci)
	}
	// 已知值：k=5 n=10 的 95% Clopper–Pearson 約為 [0.187, 0.813]
	_, ci = stats.EfficiencyCI(5, 10, stats.Confidence)
	if math.Abs(ci.Lo-0.1871) > 1e-3 || math.Abs(ci.Hi-0.8129) > 1e-3 {
		t.Fatalf("ci = %+v", ci)
	}
	if p, ci := stats.EfficiencyCI(0, 0, stats.Confidence); p != 0 || ci.Hi != 1 {
		t.Fatalf("n=0: p=%v ci=%+v", p, ci)
	}
}

func TestAUC(t *testing.T) {
	// 對角線 => 0.5
	x := []float64{0.25, 0.5, 0.75, 1}
	auc, err := stats.AUC(x, x)
	if err != nil || math.Abs(auc-0.5) > 1e-12 {
		t.Fatalf("diagonal auc = %v err=%v", auc, err)
	}
	// 完美分離 => 1
	auc, err = stats.AUC([]float64{0, 0, 1}, []float64{0.5, 1, 1})
	if err != nil || math.Abs(auc-1) > 1e-12 {
		t.Fatalf("perfect auc = %v err=%v", auc, err)
	}
	// 原點到第一個切點的三角形也算進去：0.25 + 0.5，而非只從 fpr[0] 起算的 0.5
	auc, err = stats.AUC([]float64{0.5, 1}, []float64{1, 1})
	if err != nil || math.Abs(auc-0.75) > 1e-12 {
		t.Fatalf("origin auc = %v err=%v", auc, err)
	}
	if _, err := stats.AUC([]float64{0.5, 0.2}, []float64{0.1, 0.2}); err == nil {
		t.Fatalf("expected error for decreasing fpr")
	}
	if _, err := stats.AUC([]float64{0.5}, nil); err == nil {
		t.Fatalf("expected length mismatch")
	}
}

func TestSummarize(t *testing.T) {
	s, err := stats.Summarize([]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if math.Abs(s.Mean-0.3) > 1e-12 || s.Median != 0.3 || s.Min != 0.1 || s.Max != 0.5 {
		t.Fatalf("summary = %+v", s)
	}
	if !(s.Q1 < s.Median && s.Median < s.Q3) {
		t.Fatalf("quartiles = %+v", s)
	}
	one, err := stats.Summarize([]float64{0.7})
	if err != nil || one.Q1 != 0.7 || one.Q3 != 0.7 {
		t.Fatalf("single value summary = %+v err=%v", one, err)
	}
	if _, err := stats.Summarize(nil); err == nil {
		t.Fatalf("expected error on empty input")
	}
}

func TestRenderers(t *testing.T) {
	for _, name := range []string{"table", "json", "yaml"} {
		r := buildReport()
		rd, ok := stats.RenderByName(name)
		if !ok {
			t.Fatalf("renderer %s not found", name)
		}
		var buf bytes.Buffer
		if err := r.WriteWith(&buf, rd); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		out := buf.String()
		if !strings.Contains(out, "tthh") {
			t.Fatalf("%s output missing analysis name:\n%s", name, out)
		}
		switch name {
		case "json":
			var back map[string]any
			if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
				t.Fatalf("json output invalid: %v", err)
			}
			curves := back["Curves"].(map[string]any)
			if len(curves["tp"].([]any)) != 4 {
				t.Fatalf("tp curve length")
			}
		case "yaml":
			if !strings.Contains(out, "tp: [1, 4, 8, 10]") {
				t.Fatalf("yaml curves should be flow style:\n%s", out)
			}
		case "table":
			if !strings.Contains(out, "Significance") || !strings.Contains(out, "ttbb") {
				t.Fatalf("table output:\n%s", out)
			}
		}
	}
	if _, ok := stats.RenderByName("xml"); ok {
		t.Fatalf("unexpected renderer")
	}
}
