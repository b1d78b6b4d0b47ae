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

package setting

import (
	"fmt"
	"math"
	"strings"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/hist"
	"github.com/zintix-labs/cutlab/sample"
	"github.com/zintix-labs/cutlab/scan"
)

// 預設值
const (
	DefaultNumBins  = 1000
	DefaultDistBins = 100
	DefaultWorkers  = 1
)

// Analysis 一次切點掃描所需的所有設定
type Analysis struct {
	Name            string             `yaml:"name"             json:"name"`
	NumBins         int                `yaml:"numbins"          json:"numbins"`
	ScoreRange      []float64          `yaml:"score_range"      json:"score_range"`
	BackgroundFloor *float64           `yaml:"background_floor" json:"background_floor"`
	Stat            float64            `yaml:"stat"             json:"stat"`
	Syst            float64            `yaml:"syst"             json:"syst"`
	ScaleFactors    map[string]float64 `yaml:"scale_factors"    json:"scale_factors"`
	Weighted        bool               `yaml:"weighted"         json:"weighted"`
	Workers         int                `yaml:"workers"          json:"workers"`
	DistBins        int                `yaml:"dist_bins"        json:"dist_bins"`
	Samples         []SampleSetting    `yaml:"samples"          json:"samples"`
	Features        FeatureSetting     `yaml:"features"         json:"features"`
}

// SampleSetting 一個樣本的來源。file / 內嵌 scores / generate 三者擇一。
type SampleSetting struct {
	Label    string            `yaml:"label"    json:"label"`
	Class    string            `yaml:"class"    json:"class"`
	File     string            `yaml:"file"     json:"file,omitempty"`
	Scores   []float64         `yaml:"scores"   json:"scores,omitempty"`
	Weights  []float64         `yaml:"weights"  json:"weights,omitempty"`
	Generate *sample.Generator `yaml:"generate" json:"generate,omitempty"`

	class sample.Class
}

// FeatureSetting 切點後要輸出分佈的特徵欄位
//
// columns 直接列出欄位；phase 則由預設特徵結構展開（jets 為噴流數），兩者可並用。
type FeatureSetting struct {
	Columns []string `yaml:"columns" json:"columns,omitempty"`
	Phase   string   `yaml:"phase"   json:"phase,omitempty"`
	Jets    int      `yaml:"jets"    json:"jets,omitempty"`
	Bins    int      `yaml:"bins"    json:"bins,omitempty"`
}

func (a *Analysis) init() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.NumBins == 0 {
		a.NumBins = DefaultNumBins
	}
	if len(a.ScoreRange) == 0 {
		a.ScoreRange = []float64{0, 1}
	}
	if a.BackgroundFloor == nil {
		f := float64(scan.DefaultBackgroundFloor)
		a.BackgroundFloor = &f
	}
	if a.Workers == 0 {
		a.Workers = DefaultWorkers
	}
	if a.DistBins == 0 {
		a.DistBins = DefaultDistBins
	}
	if a.Features.Bins == 0 {
		a.Features.Bins = DefaultDistBins
	}
	for i := range a.Samples {
		s := &a.Samples[i]
		s.Label = strings.TrimSpace(s.Label)
		c, err := sample.ParseClass(s.Class)
		if err != nil {
			return errs.WrapWithExtra(err, "invalid sample class", "sample="+s.Label)
		}
		s.class = c
	}
	return a.valid()
}

// valid 在任何掃描開始之前檢查設定，第一個錯誤即回傳
func (a *Analysis) valid() error {
	if a.NumBins <= 0 {
		return errs.Wrap(errs.ErrBadBins, fmt.Sprintf("analysis %s: numbins=%d", a.Name, a.NumBins))
	}
	if len(a.ScoreRange) != 2 || !(a.ScoreRange[1] > a.ScoreRange[0]) {
		return errs.Wrap(errs.ErrBadRange, fmt.Sprintf("analysis %s: score_range=%v", a.Name, a.ScoreRange))
	}
	if f := *a.BackgroundFloor; f < 0 || math.IsNaN(f) {
		return errs.Warnf("analysis %s: background_floor must be >= 0, got %g", a.Name, f)
	}
	if a.Stat < 0 || a.Syst < 0 {
		return errs.Warnf("analysis %s: stat/syst must be >= 0, got %g/%g", a.Name, a.Stat, a.Syst)
	}
	if a.Workers < 1 {
		return errs.Warnf("analysis %s: workers must be >= 1", a.Name)
	}
	if a.DistBins < 1 || a.Features.Bins < 1 {
		return errs.Warnf("analysis %s: histogram bins must be >= 1", a.Name)
	}
	if _, err := sample.ParsePhase(a.Features.Phase); a.Features.Phase != "" && err != nil {
		return err
	}

	nsig, nbkg := 0, 0
	seen := map[string]struct{}{}
	for _, s := range a.Samples {
		if s.Label == "" {
			return errs.Warnf("analysis %s: sample label required", a.Name)
		}
		if _, ok := seen[s.Label]; ok {
			return errs.Warnf("analysis %s: duplicate sample %s", a.Name, s.Label)
		}
		seen[s.Label] = struct{}{}
		if s.class == sample.Signal {
			nsig++
		} else {
			nbkg++
		}
		sf, ok := a.ScaleFactors[s.Label]
		if !ok {
			return errs.NewWithExtra(errs.Warn, fmt.Sprintf("analysis %s: missing scale factor", a.Name), "sample="+s.Label)
		}
		if sf < 0 || math.IsNaN(sf) || math.IsInf(sf, 0) {
			return errs.NewWithExtra(errs.Warn, fmt.Sprintf("analysis %s: scale factor must be finite and >= 0", a.Name), "sample="+s.Label)
		}
		if err := s.validSource(); err != nil {
			return errs.WrapWithExtra(err, "analysis "+a.Name, "sample="+s.Label)
		}
	}
	if nsig != 1 {
		return errs.Warnf("analysis %s: exactly one signal sample required, got %d", a.Name, nsig)
	}
	if nbkg == 0 {
		return errs.Warnf("analysis %s: at least one background sample required", a.Name)
	}
	return nil
}

func (s *SampleSetting) validSource() error {
	n := 0
	if s.File != "" {
		n++
	}
	if len(s.Scores) > 0 {
		n++
	}
	if s.Generate != nil {
		n++
	}
	if n != 1 {
		return errs.NewWarn("exactly one of file, scores, generate required")
	}
	if len(s.Weights) > 0 && len(s.Weights) != len(s.Scores) {
		return errs.ErrLengthMismatch
	}
	if s.Generate != nil {
		return s.Generate.Valid()
	}
	return nil
}

// SampleClass 解析後的類別
func (s *SampleSetting) SampleClass() sample.Class { return s.class }

// Lo 分數範圍下界
func (a *Analysis) Lo() float64 { return a.ScoreRange[0] }

// Hi 分數範圍上界
func (a *Analysis) Hi() float64 { return a.ScoreRange[1] }

// Floor 背景下限
func (a *Analysis) Floor() float64 { return *a.BackgroundFloor }

// Binning 掃描用的分箱
func (a *Analysis) Binning() hist.Binning {
	return hist.Binning{N: a.NumBins, Lo: a.Lo(), Hi: a.Hi()}
}

// Scanner 依設定建立掃描器
func (a *Analysis) Scanner() *scan.Scanner {
	return &scan.Scanner{
		Binning:         a.Binning(),
		BackgroundFloor: a.Floor(),
		Stat:            a.Stat,
		Syst:            a.Syst,
	}
}

// FeatureColumns 切點後要輸出分佈的欄位（去重、保持順序）
func (a *Analysis) FeatureColumns() []string {
	out := make([]string, 0, len(a.Features.Columns))
	seen := map[string]struct{}{}
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range a.Features.Columns {
		add(c)
	}
	if a.Features.Phase != "" {
		p, _ := sample.ParsePhase(a.Features.Phase)
		for _, c := range sample.DefaultSchema(a.Features.Jets).Columns(p) {
			add(c)
		}
	}
	return out
}
