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

package cutlab

import (
	"context"
	"log/slog"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/hist"
	"github.com/zintix-labs/cutlab/sample"
	"github.com/zintix-labs/cutlab/scan"
	"github.com/zintix-labs/cutlab/setting"
	"github.com/zintix-labs/cutlab/stats"
	"github.com/zintix-labs/cutlab/yield"
)

// Analyze 執行一次完整的切點掃描：
//
//	樣本檢查 -> 尾端累積曲線 -> 期望產量 -> 掃描 -> 報告
//
// 所有設定與輸入錯誤（Warn）都在掃描開始前回傳；沒有任何切點滿足背景下限時回傳
// errs.ErrNoAdmissibleCut（Log）。tb 與其中的樣本不會被修改。
func Analyze(ctx context.Context, log *slog.Logger, a *setting.Analysis, tb *sample.Table, showpb bool) (*stats.ScanReport, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "analysis canceled")
	}
	// 手動組出的設定尚未解析類別與預設值；Init 可重複呼叫
	if err := a.Init(); err != nil {
		return nil, err
	}
	samples, err := samplesOf(a, tb)
	if err != nil {
		return nil, err
	}
	sig, bkgs, err := sample.Split(samples)
	if err != nil {
		return nil, err
	}
	sc := a.Scanner()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	b := sc.Binning

	log.Info("analysis start",
		slog.String("analysis", a.Name),
		slog.Int("numbins", b.N),
		slog.Float64("floor", sc.BackgroundFloor),
		slog.Float64("stat", sc.Stat),
		slog.Float64("syst", sc.Syst),
		slog.Int("backgrounds", len(bkgs)),
		slog.Bool("weighted", a.Weighted),
	)

	sigComp, err := component(sig, b, a.Weighted)
	if err != nil {
		return nil, err
	}
	bkgComps := make([]yield.Component, 0, len(bkgs))
	for _, s := range bkgs {
		c, err := component(s, b, a.Weighted)
		if err != nil {
			return nil, err
		}
		bkgComps = append(bkgComps, c)
	}
	curves, err := yield.Build(sigComp, bkgComps)
	if err != nil {
		return nil, err
	}

	var res *scan.Result
	if a.Workers > 1 {
		res, err = sc.ScanParallel(ctx, curves.Signal, curves.Background, a.Workers, showpb)
	} else {
		res, err = sc.Scan(curves.Signal, curves.Background)
	}
	if err != nil {
		if errs.Level(err) == errs.Log {
			log.Warn("no admissible cut", slog.String("analysis", a.Name), slog.Float64("floor", sc.BackgroundFloor))
		}
		return nil, err
	}
	log.Info("cut selected",
		slog.String("analysis", a.Name),
		slog.Int("index", res.Index),
		slog.Float64("threshold", res.Threshold),
		slog.Float64("significance", res.Significance),
		slog.Float64("signal", res.Signal),
		slog.Float64("background", res.Background),
	)

	rep, err := report(a, b, res, curves, sig, bkgs)
	if err != nil {
		return nil, err
	}
	if err := postCut(rep, a, b, res.Index, tb, samples); err != nil {
		return nil, err
	}
	rep.Done()
	return rep, nil
}

// samplesOf 依設定順序從事件表取出樣本
func samplesOf(a *setting.Analysis, tb *sample.Table) ([]sample.Sample, error) {
	out := make([]sample.Sample, 0, len(a.Samples))
	for i := range a.Samples {
		ss := &a.Samples[i]
		s, err := tb.Sample(ss.Label, ss.SampleClass(), a.ScaleFactors[ss.Label])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// component 建立單一樣本的效率曲線與投影用的總量（事件數或權重和）
func component(s sample.Sample, b hist.Binning, weighted bool) (yield.Component, error) {
	c := yield.Component{Label: s.Label, Scale: s.ScaleFactor}
	var err error
	if weighted {
		c.Curve, err = hist.WeightedTailCumulative(s.Scores, s.UnitWeights(), b.N, b.Lo, b.Hi)
		c.Count = s.SumWeights()
	} else {
		c.Curve, err = hist.TailCumulative(s.Scores, b.N, b.Lo, b.Hi)
		c.Count = float64(s.Len())
	}
	if err != nil {
		return c, errs.WrapWithExtra(err, "build efficiency curve failed", "sample="+s.Label)
	}
	return c, nil
}

func report(a *setting.Analysis, b hist.Binning, res *scan.Result, curves *yield.Curves, sig sample.Sample, bkgs []sample.Sample) (*stats.ScanReport, error) {
	rep := &stats.ScanReport{
		Summary: &stats.SummaryReport{
			Analysis:        a.Name,
			NumBins:         b.N,
			Lo:              b.Lo,
			Hi:              b.Hi,
			BackgroundFloor: a.Floor(),
			Stat:            a.Stat,
			Syst:            a.Syst,
			Weighted:        a.Weighted,
			Index:           res.Index,
			Position:        res.Position,
			Threshold:       res.Threshold,
			Significance:    res.Significance,
			Signal:          res.Signal,
			Background:      res.Background,
		},
		Curves: &stats.CurveReport{
			TP:         curves.Signal,
			FP:         curves.Background,
			PerProcess: curves.PerProcess,
		},
	}

	// ROC 用未加權效率：訊號自身、背景為所有子過程合併後的計數
	sigCounts := hist.Counts(sig.Scores, b)
	bkgCounts := make([]int, b.N)
	for _, s := range bkgs {
		hist.AddCounts(bkgCounts, hist.Counts(s.Scores, b))
	}
	var err error
	if rep.Curves.SignalEff, err = hist.TailFromCounts(sigCounts); err != nil {
		return nil, err
	}
	if rep.Curves.BackgroundEff, err = hist.TailFromCounts(bkgCounts); err != nil {
		return nil, err
	}

	all := append([]sample.Sample{sig}, bkgs...)
	perProcess := curves.At(res.Position)
	distBins := hist.Binning{N: a.DistBins, Lo: b.Lo, Hi: b.Hi}
	for _, s := range all {
		sr, err := sampleReport(s, b, res.Index)
		if err != nil {
			return nil, err
		}
		if s.Class == sample.Background {
			sr.Yield = perProcess[s.Label]
		} else {
			sr.Yield = res.Signal
		}
		rep.Samples = append(rep.Samples, sr)

		d := hist.Distribute(s.Scores, s.Weights, s.ScaleFactor, distBins)
		rep.Dist = append(rep.Dist, &stats.DistReport{Label: s.Label, Edges: d.Edges, Values: d.Values, Entries: d.Entries})
	}
	return rep, nil
}

func sampleReport(s sample.Sample, b hist.Binning, k int) (*stats.SampleReport, error) {
	sum, err := stats.Summarize(s.Scores)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "summarize scores failed", "sample="+s.Label)
	}
	passed := 0
	for _, ok := range b.Pass(s.Scores, k) {
		if ok {
			passed++
		}
	}
	return &stats.SampleReport{
		Label:       s.Label,
		Class:       s.Class.String(),
		Events:      s.Len(),
		Passed:      passed,
		SumWeights:  s.SumWeights(),
		ScaleFactor: s.ScaleFactor,
		Scores:      sum,
	}, nil
}
