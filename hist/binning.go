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

// Package hist 提供等寬分箱、尾端累積效率曲線與加權分布。
//
// 所有函數都是純函數：不修改輸入、不持有狀態。
package hist

import (
	"math"

	"github.com/zintix-labs/cutlab/errs"
)

// Binning 描述 [Lo, Hi) 上 N 個等寬分箱。
type Binning struct {
	N  int     `json:"numbins" yaml:"numbins"`
	Lo float64 `json:"lo"      yaml:"lo"`
	Hi float64 `json:"hi"      yaml:"hi"`
}

// NewBinning 檢查參數後建立 Binning。
func NewBinning(n int, lo, hi float64) (Binning, error) {
	b := Binning{N: n, Lo: lo, Hi: hi}
	return b, b.Valid()
}

// Valid 檢查 N > 0 且 Hi > Lo（皆為有限值）。
func (b Binning) Valid() error {
	if b.N <= 0 {
		return errs.ErrBadBins
	}
	if math.IsNaN(b.Lo) || math.IsNaN(b.Hi) || math.IsInf(b.Lo, 0) || math.IsInf(b.Hi, 0) || !(b.Hi > b.Lo) {
		return errs.ErrBadRange
	}
	return nil
}

// Width 單一分箱寬度
func (b Binning) Width() float64 {
	return (b.Hi - b.Lo) / float64(b.N)
}

// Edge 回傳第 k 個分箱的下緣，k == N 時即為 Hi。
func (b Binning) Edge(k int) float64 {
	if k >= b.N {
		return b.Hi
	}
	return b.Lo + float64(k)*(b.Hi-b.Lo)/float64(b.N)
}

// Edges 回傳 N+1 個邊界
func (b Binning) Edges() []float64 {
	out := make([]float64, b.N+1)
	for k := range out {
		out[k] = b.Edge(k)
	}
	return out
}

// Locate 回傳 x 所在的分箱；x 落在範圍外時 ok 為 false。
// x == Hi 算進最後一箱（與 numpy.histogram 相同）。
func (b Binning) Locate(x float64) (k int, ok bool) {
	if math.IsNaN(x) || x < b.Lo || x > b.Hi {
		return 0, false
	}
	k = int(math.Floor((x - b.Lo) * float64(b.N) / (b.Hi - b.Lo)))
	if k >= b.N {
		k = b.N - 1
	}
	return k, true
}

// Index 與 Locate 相同，但範圍外的值夾到第一或最後一箱。NaN 歸到第一箱。
func (b Binning) Index(x float64) int {
	switch {
	case math.IsNaN(x), x <= b.Lo:
		return 0
	case x >= b.Hi:
		return b.N - 1
	}
	k, _ := b.Locate(x)
	return k
}

// Pass 標記分箱索引 >= k 的事件，也就是尾端曲線在索引 k 所計入的事件
func (b Binning) Pass(scores []float64, k int) []bool {
	out := make([]bool, len(scores))
	for i, x := range scores {
		out[i] = b.Index(x) >= k
	}
	return out
}
