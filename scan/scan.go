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

// Package scan 在預期事件數曲線上尋找顯著性最大的分數切點。
//
// 曲線位置 i 與分箱索引 k 的對應為 k = N-1-i：
// 位置 0 是最嚴格的切點（只留最高分那一箱），切點分數為 Binning.Edge(k)。
package scan

import (
	"math"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/hist"
	"github.com/zintix-labs/cutlab/signif"
)

// DefaultBackgroundFloor 預設的最低背景事件數，避免在幾乎沒有背景的分箱出現假的極大值
const DefaultBackgroundFloor float64 = 10

// Scanner 持有整次掃描共用的常數。零值不可用，請設定 Binning。
type Scanner struct {
	Binning         hist.Binning
	BackgroundFloor float64 // 可接受切點的最低預期背景
	Stat            float64 // 背景相對 MC 統計不確定度
	Syst            float64 // 背景相對系統不確定度
}

// Result 掃描結果
type Result struct {
	Index        int     `json:"index"        yaml:"index"`    // 分箱索引 k
	Position     int     `json:"position"     yaml:"position"` // 曲線位置 N-1-k
	Threshold    float64 `json:"threshold"    yaml:"threshold"`
	Significance float64 `json:"significance" yaml:"significance"`
	Signal       float64 `json:"signal"       yaml:"signal"`
	Background   float64 `json:"background"   yaml:"background"`
}

// New 以預設背景下限建立 Scanner
func New(b hist.Binning) *Scanner {
	return &Scanner{Binning: b, BackgroundFloor: DefaultBackgroundFloor}
}

// Validate 在掃描開始前檢查設定，全部為 Warn 級錯誤。
func (sc *Scanner) Validate() error {
	if err := sc.Binning.Valid(); err != nil {
		return err
	}
	if !nonNegative(sc.BackgroundFloor) {
		return errs.Warnf("background floor must be a finite value >= 0, got %g", sc.BackgroundFloor)
	}
	if !nonNegative(sc.Stat) || !nonNegative(sc.Syst) {
		return errs.Warnf("stat and syst must be finite values >= 0, got stat=%g syst=%g", sc.Stat, sc.Syst)
	}
	return nil
}

func (sc *Scanner) check(tp, fp []float64) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if len(tp) != sc.Binning.N || len(fp) != sc.Binning.N {
		return errs.Warnf("curve length mismatch: tp=%d fp=%d numbins=%d", len(tp), len(fp), sc.Binning.N)
	}
	return nil
}

// Scan 由最嚴格的切點往寬鬆方向掃描，回傳顯著性最大的可接受切點。
//
// 只有 fp[i] >= BackgroundFloor 的位置可被接受；只有嚴格大於目前最佳值才更新，
// 因此同分時保留較嚴格（分數較高）的切點。
// 沒有任何位置的顯著性 > 0 時回傳 errs.ErrNoAdmissibleCut，不會給預設切點。
func (sc *Scanner) Scan(tp, fp []float64) (*Result, error) {
	if err := sc.check(tp, fp); err != nil {
		return nil, err
	}
	best, ok := sc.scanRange(tp, fp, 0, len(tp))
	if !ok {
		return nil, errs.ErrNoAdmissibleCut
	}
	return sc.result(best, tp, fp), nil
}

// Significances 回傳每個位置的顯著性（不套用背景下限），供報表繪圖使用。
func (sc *Scanner) Significances(tp, fp []float64) ([]float64, error) {
	if err := sc.check(tp, fp); err != nil {
		return nil, err
	}
	out := make([]float64, len(tp))
	for i := range tp {
		out[i] = signif.ZPoisson(tp[i], fp[i], sc.Stat, sc.Syst)
	}
	return out, nil
}

// Threshold 分箱索引 k 對應的切點分數
func (sc *Scanner) Threshold(k int) float64 {
	return sc.Binning.Edge(k)
}

// Position 分箱索引 k 對應的曲線位置
func (sc *Scanner) Position(k int) int {
	return sc.Binning.N - 1 - k
}

// candidate 一段區間內的最佳位置
type candidate struct {
	pos int
	z   float64
}

// scanRange 掃描位置 [from, to)，回傳區間內的最佳位置；沒有改善時 ok 為 false。
func (sc *Scanner) scanRange(tp, fp []float64, from, to int) (best candidate, ok bool) {
	best = candidate{pos: -1, z: 0}
	for i := from; i < to; i++ {
		b := fp[i]
		if !(b >= sc.BackgroundFloor) {
			continue
		}
		if z := signif.ZPoisson(tp[i], b, sc.Stat, sc.Syst); z > best.z {
			best = candidate{pos: i, z: z}
		}
	}
	return best, best.pos >= 0
}

func (sc *Scanner) result(c candidate, tp, fp []float64) *Result {
	k := sc.Binning.N - 1 - c.pos
	return &Result{
		Index:        k,
		Position:     c.pos,
		Threshold:    sc.Threshold(k),
		Significance: c.z,
		Signal:       tp[c.pos],
		Background:   fp[c.pos],
	}
}

func nonNegative(x float64) bool {
	return x >= 0 && !math.IsInf(x, 0)
}
