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

package sample

import (
	"math/rand/v2"
	"sort"

	"github.com/zintix-labs/cutlab/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator 合成樣本：分數 ~ Beta(alpha, beta)，特徵 ~ Normal(mean, sigma)。
// 同一個 Seed 永遠產生同一份資料。
type Generator struct {
	Events   int                 `yaml:"events"   json:"events"`
	Alpha    float64             `yaml:"alpha"    json:"alpha"`
	Beta     float64             `yaml:"beta"     json:"beta"`
	Weight   float64             `yaml:"weight"   json:"weight,omitempty"`
	Seed     uint64              `yaml:"seed"     json:"seed"`
	Features map[string]Gaussian `yaml:"features" json:"features,omitempty"`
}

type Gaussian struct {
	Mean  float64 `yaml:"mean"  json:"mean"`
	Sigma float64 `yaml:"sigma" json:"sigma"`
}

// Valid 檢查生成參數
func (g *Generator) Valid() error {
	if g.Events < 1 || !(g.Alpha > 0) || !(g.Beta > 0) {
		return errs.Warnf("generate: events=%d alpha=%g beta=%g", g.Events, g.Alpha, g.Beta)
	}
	if g.Weight < 0 {
		return errs.Warnf("generate: weight must be >= 0, got %g", g.Weight)
	}
	for name, f := range g.Features {
		if name == ColScore || name == ColWeight {
			return errs.Warnf("generate: feature name %s is reserved", name)
		}
		if !(f.Sigma > 0) {
			return errs.Warnf("generate: feature %s sigma must be > 0", name)
		}
	}
	return nil
}

// Frame 產生一份事件表。Weight 為 0 時每筆權重為 1。
func (g *Generator) Frame(label string) (*Frame, error) {
	if err := g.Valid(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15)
	score := distuv.Beta{Alpha: g.Alpha, Beta: g.Beta, Src: src}

	w := g.Weight
	if w == 0 {
		w = 1
	}
	cols := make(map[string][]float64, len(g.Features)+2)
	scores := make([]float64, g.Events)
	weights := make([]float64, g.Events)
	for i := range scores {
		scores[i] = score.Rand()
		weights[i] = w
	}
	cols[ColScore] = scores
	cols[ColWeight] = weights

	// 依名稱排序，確保亂數消耗順序固定
	names := make([]string, 0, len(g.Features))
	for name := range g.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := g.Features[name]
		d := distuv.Normal{Mu: f.Mean, Sigma: f.Sigma, Src: src}
		col := make([]float64, g.Events)
		for i := range col {
			col[i] = d.Rand()
		}
		cols[name] = col
	}
	return &Frame{Label: label, Columns: cols}, nil
}
