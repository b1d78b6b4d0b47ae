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

// Package yield 把累積效率曲線換算成預期事件數。
package yield

import (
	"sort"

	"github.com/zintix-labs/cutlab/errs"
	"gonum.org/v1/gonum/floats"
)

// Project 回傳 curve[i] * count * scale 的新切片，不修改 curve。
//
// count 為該樣本的未加權事件數（加權模式下為總權重），scale 為截面積 × 亮度 × 效率修正。
func Project(curve []float64, count, scale float64) []float64 {
	out := make([]float64, len(curve))
	copy(out, curve)
	floats.Scale(count*scale, out)
	return out
}

// Sum 將多條等長曲線逐點相加，回傳新的切片。
func Sum(curves ...[]float64) ([]float64, error) {
	if len(curves) == 0 {
		return nil, errs.NewWarn("yield.Sum: no curves")
	}
	n := len(curves[0])
	out := make([]float64, n)
	for i, c := range curves {
		if len(c) != n {
			return nil, errs.Warnf("yield.Sum: curve %d has length %d, want %d", i, len(c), n)
		}
		floats.Add(out, c)
	}
	return out, nil
}

// Curves 為掃描所需的預期事件數曲線。
//
// Signal / Background 驅動最佳化；PerProcess 只供報表（各背景子過程）使用。
type Curves struct {
	Signal     []float64            `json:"tp"          yaml:"tp"`
	Background []float64            `json:"fp"          yaml:"fp"`
	PerProcess map[string][]float64 `json:"per_process" yaml:"per_process"`
}

// Component 一個樣本的投影輸入
type Component struct {
	Label string
	Curve []float64
	Count float64
	Scale float64
}

// Build 投影訊號與所有背景子過程，並把背景加總成單一曲線。
func Build(signal Component, backgrounds []Component) (*Curves, error) {
	if len(backgrounds) == 0 {
		return nil, errs.NewWarn("yield.Build: at least one background required")
	}
	c := &Curves{
		Signal:     Project(signal.Curve, signal.Count, signal.Scale),
		PerProcess: make(map[string][]float64, len(backgrounds)),
	}
	parts := make([][]float64, 0, len(backgrounds))
	for _, bg := range backgrounds {
		if len(bg.Curve) != len(signal.Curve) {
			return nil, errs.NewWithExtra(errs.Warn, "yield.Build: background curve length differs from signal", "label="+bg.Label)
		}
		if _, dup := c.PerProcess[bg.Label]; dup {
			return nil, errs.NewWithExtra(errs.Warn, "yield.Build: duplicate background label", "label="+bg.Label)
		}
		p := Project(bg.Curve, bg.Count, bg.Scale)
		c.PerProcess[bg.Label] = p
		parts = append(parts, p)
	}
	sum, err := Sum(parts...)
	if err != nil {
		return nil, err
	}
	c.Background = sum
	return c, nil
}

// Labels 回傳排序後的背景子過程名稱
func (c *Curves) Labels() []string {
	out := make([]string, 0, len(c.PerProcess))
	for k := range c.PerProcess {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// At 回傳曲線位置 i 上各背景子過程的預期事件數
func (c *Curves) At(i int) map[string]float64 {
	out := make(map[string]float64, len(c.PerProcess))
	for k, v := range c.PerProcess {
		if i >= 0 && i < len(v) {
			out[k] = v[i]
		}
	}
	return out
}
