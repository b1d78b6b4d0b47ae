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

package stats

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/cutlab/signif"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// Confidence 效率信賴區間的信心水準
const Confidence = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// ScanReport 一次切點掃描的結果報告
//
// 組裝時只填原始計數與曲線，Done() 一次性算出效率、信賴區間與 AUC。
type ScanReport struct {
	Summary *SummaryReport   `json:"Summary"`
	Samples []*SampleReport  `json:"Samples"`
	Curves  *CurveReport     `json:"Curves,omitzero"`
	Dist    []*DistReport    `json:"Dist,omitempty"`
	PostCut []*FeatureReport `json:"PostCut,omitempty"`
	isDone  bool
}

type SummaryReport struct {
	Analysis        string  `json:"Analysis"`
	NumBins         int     `json:"NumBins"`
	Lo              float64 `json:"Lo"`
	Hi              float64 `json:"Hi"`
	BackgroundFloor float64 `json:"BackgroundFloor"`
	Stat            float64 `json:"Stat"`
	Syst            float64 `json:"Syst"`
	Weighted        bool    `json:"Weighted"`
	Index           int     `json:"Index"`
	Position        int     `json:"Position"`
	Threshold       float64 `json:"Threshold"`
	Significance    float64 `json:"Significance"`
	SimpleZ         float64 `json:"SimpleZ"`
	Signal          float64 `json:"Signal"`
	Background      float64 `json:"Background"`
	AUC             float64 `json:"AUC"`
}

// SampleReport 單一樣本在選定切點上的統計
type SampleReport struct {
	Label       string       `json:"Label"`
	Class       string       `json:"Class"`
	Events      int          `json:"Events"`
	Passed      int          `json:"Passed"`
	SumWeights  float64      `json:"SumWeights"`
	ScaleFactor float64      `json:"ScaleFactor"`
	Yield       float64      `json:"Yield"`
	Efficiency  float64      `json:"Efficiency"`
	EffCI       CI           `json:"EffCI"`
	Scores      ScoreSummary `json:"Scores"`
}

// CurveReport 掃描使用的曲線（位置 0 為最緊的切點）
type CurveReport struct {
	TP            []float64            `json:"tp"`
	FP            []float64            `json:"fp"`
	PerProcess    map[string][]float64 `json:"per_process,omitempty"`
	SignalEff     []float64            `json:"signal_eff"`
	BackgroundEff []float64            `json:"background_eff"`
}

// DistReport 加權的分數分佈
type DistReport struct {
	Label   string    `json:"Label"`
	Edges   []float64 `json:"Edges"`
	Values  []float64 `json:"Values"`
	Entries int       `json:"Entries"`
}

// FeatureReport 通過切點的事件在某個特徵上的加權分佈
type FeatureReport struct {
	Column  string    `json:"Column"`
	Label   string    `json:"Label"`
	Edges   []float64 `json:"Edges"`
	Values  []float64 `json:"Values"`
	Entries int       `json:"Entries"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將計數轉成效率與信賴區間，並計算 ROC AUC。重複呼叫無作用。
func (r *ScanReport) Done() {
	if r.isDone {
		return
	}
	for _, s := range r.Samples {
		s.Efficiency, s.EffCI = EfficiencyCI(s.Passed, s.Events, Confidence)
	}
	if r.Summary != nil {
		r.Summary.SimpleZ = signif.SimpleZ(r.Summary.Signal, r.Summary.Background)
		if r.Curves != nil {
			if auc, err := AUC(r.Curves.BackgroundEff, r.Curves.SignalEff); err == nil {
				r.Summary.AUC = auc
			}
		}
	}
	r.isDone = true
}

func (r *ScanReport) WriteWith(w io.Writer, rep ScanReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

// StdOut 以表格輸出摘要與各樣本統計
func (r *ScanReport) StdOut(ut time.Duration) {
	r.Done()
	_ = r.WriteTable(os.Stdout, ut)
}

// WriteTable 輸出人類閱讀用的表格
func (r *ScanReport) WriteTable(w io.Writer, ut time.Duration) error {
	r.Done()
	p := message.NewPrinter(lang)
	if ut != 0 {
		p.Fprintf(w, "used: %s\n", formatDuration(ut))
	}
	sk, sm := r.fmtBasic()
	if _, err := io.WriteString(w, fmtTable(r.Summary.Analysis, sk, sm)); err != nil {
		return err
	}
	for _, s := range r.Samples {
		k, m := fmtSample(s)
		if _, err := io.WriteString(w, fmtTable(s.Label, k, m)); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return fmt.Sprintf("%.3f seconds", d.Seconds())
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%dh:%dm:%ds", h, m, s)
}

func (r *ScanReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	basic := map[string]string{
		"Bins":             p.Sprintf("%d  [%g, %g)", s.NumBins, s.Lo, s.Hi),
		"Background Floor": p.Sprintf("%.2f", s.BackgroundFloor),
		"Uncertainty":      p.Sprintf("stat=%.3f syst=%.3f", s.Stat, s.Syst),
		"Weighted":         fmt.Sprintf("%t", s.Weighted),
		"Cut Index":        p.Sprintf("%d (position %d)", s.Index, s.Position),
		"Threshold":        p.Sprintf("%.6f", s.Threshold),
		"Significance":     p.Sprintf("%.4f", s.Significance),
		"s/sqrt(b)":        p.Sprintf("%.4f", s.SimpleZ),
		"Signal Yield":     p.Sprintf("%.3f", s.Signal),
		"Background Yield": p.Sprintf("%.3f", s.Background),
		"ROC AUC":          p.Sprintf("%.4f", s.AUC),
	}
	keys := []string{"Bins", "Background Floor", "Uncertainty", "Weighted", "Cut Index", "Threshold", "Significance", "s/sqrt(b)", "Signal Yield", "Background Yield", "ROC AUC"}
	return keys, basic
}

func fmtSample(s *SampleReport) ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	m := map[string]string{
		"Class":        s.Class,
		"Events":       p.Sprintf("%d", s.Events),
		"Passed":       p.Sprintf("%d", s.Passed),
		"Sum Weights":  p.Sprintf("%.3f", s.SumWeights),
		"Scale Factor": p.Sprintf("%g", s.ScaleFactor),
		"Yield @ Cut":  p.Sprintf("%.3f", s.Yield),
		"Efficiency":   p.Sprintf("%.4f %%", 100*s.Efficiency),
		"Eff 95% CI":   p.Sprintf("[%.4f%%,%.4f%%]", 100*s.EffCI.Lo, 100*s.EffCI.Hi),
		"Score Mean":   p.Sprintf("%.4f ± %.4f", s.Scores.Mean, s.Scores.Std),
		"Score Q1/2/3": p.Sprintf("%.4f / %.4f / %.4f", s.Scores.Q1, s.Scores.Median, s.Scores.Q3),
	}
	keys := []string{"Class", "Events", "Passed", "Sum Weights", "Scale Factor", "Yield @ Cut", "Efficiency", "Eff 95% CI", "Score Mean", "Score Q1/2/3"}
	return keys, m
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

// ProcessLabels 依名稱排序的背景子過程
func (c *CurveReport) ProcessLabels() []string {
	out := make([]string, 0, len(c.PerProcess))
	for k := range c.PerProcess {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
