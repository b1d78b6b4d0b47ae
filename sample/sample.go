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

// Package sample 定義事件樣本、欄式事件表與特徵欄位結構。
//
// 樣本由外部（讀檔 + 分類器推論）建立一次後即視為唯讀：本包與下游套件都不會修改其中的切片。
package sample

import (
	"fmt"
	"math"
	"strings"

	"github.com/zintix-labs/cutlab/errs"
)

// Class 樣本類別
type Class uint8

const (
	Signal Class = iota
	Background
)

var classStr = map[Class]string{
	Signal:     "signal",
	Background: "background",
}

func (c Class) String() string {
	if s, ok := classStr[c]; ok {
		return s
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ParseClass 解析 "signal" / "background"（不分大小寫，可用 sig / bkg 簡寫）。
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "signal", "sig", "s":
		return Signal, nil
	case "background", "bkg", "bg", "b":
		return Background, nil
	}
	return 0, errs.Warnf("unknown sample class %q", s)
}

// Sample 一個樣本：同一物理過程的 (score, weight) 序列與整體縮放因子。
type Sample struct {
	Label       string    `json:"label"        yaml:"label"`
	Class       Class     `json:"-"            yaml:"-"`
	Scores      []float64 `json:"scores"       yaml:"scores"`
	Weights     []float64 `json:"weights"      yaml:"weights"`
	ScaleFactor float64   `json:"scale_factor" yaml:"scale_factor"`
}

// Validate 檢查樣本可以進入分析流程
//
//   - 分數不可為空，且需為有限值
//   - Weights 為空時視為每筆權重 1，否則長度需與 Scores 一致
//   - ScaleFactor 需為有限值 >= 0
func (s *Sample) Validate() error {
	extra := "sample=" + s.Label
	if strings.TrimSpace(s.Label) == "" {
		return errs.NewWarn("sample label required")
	}
	if len(s.Scores) == 0 {
		return errs.WrapWithExtra(errs.ErrEmptySample, "invalid sample", extra)
	}
	if len(s.Weights) != 0 && len(s.Weights) != len(s.Scores) {
		return errs.WrapWithExtra(errs.ErrLengthMismatch, fmt.Sprintf("invalid sample: scores=%d weights=%d", len(s.Scores), len(s.Weights)), extra)
	}
	for i, x := range s.Scores {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errs.NewWithExtra(errs.Warn, fmt.Sprintf("non-finite score at event %d", i), extra)
		}
	}
	for i, w := range s.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return errs.NewWithExtra(errs.Warn, fmt.Sprintf("non-finite weight at event %d", i), extra)
		}
	}
	if math.IsNaN(s.ScaleFactor) || math.IsInf(s.ScaleFactor, 0) || s.ScaleFactor < 0 {
		return errs.NewWithExtra(errs.Warn, fmt.Sprintf("scale factor must be finite and >= 0, got %g", s.ScaleFactor), extra)
	}
	return nil
}

// Len 事件數
func (s *Sample) Len() int { return len(s.Scores) }

// Weight 第 i 筆事件的權重，未提供權重時為 1
func (s *Sample) Weight(i int) float64 {
	if len(s.Weights) == 0 {
		return 1
	}
	return s.Weights[i]
}

// SumWeights 權重總和，未提供權重時等於事件數
func (s *Sample) SumWeights() float64 {
	if len(s.Weights) == 0 {
		return float64(len(s.Scores))
	}
	sum := 0.0
	for _, w := range s.Weights {
		sum += w
	}
	return sum
}

// UnitWeights 回傳與 Scores 等長的權重切片（未提供時補 1），永遠是新的切片
func (s *Sample) UnitWeights() []float64 {
	out := make([]float64, len(s.Scores))
	for i := range out {
		out[i] = s.Weight(i)
	}
	return out
}

// Split 依類別分出唯一的訊號樣本與所有背景樣本。
func Split(samples []Sample) (sig Sample, bkgs []Sample, err error) {
	nsig := 0
	for _, s := range samples {
		switch s.Class {
		case Signal:
			sig = s
			nsig++
		case Background:
			bkgs = append(bkgs, s)
		default:
			return sig, nil, errs.Warnf("sample %s: unknown class %d", s.Label, s.Class)
		}
	}
	if nsig != 1 {
		return sig, nil, errs.Warnf("exactly one signal sample required, got %d", nsig)
	}
	if len(bkgs) == 0 {
		return sig, nil, errs.NewWarn("at least one background sample required")
	}
	return sig, bkgs, nil
}
