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

package hist

import (
	"github.com/zintix-labs/cutlab/errs"
)

// Counts 回傳每個分箱的事件數（不加權），範圍外的分數夾到邊界箱。
func Counts(scores []float64, b Binning) []int {
	out := make([]int, b.N)
	for _, x := range scores {
		out[b.Index(x)]++
	}
	return out
}

// TailCumulative 建立尾端累積效率曲線。
//
// 回傳長度 numbins，位置 i 為分數落在分箱 [numbins-1-i, numbins-1] 的事件比例：
// i = 0 只含最高分的一箱（最嚴格的切點），i = numbins-1 包含全部事件，值為 1。
//
// 以整數累加後再除以總數，因此曲線嚴格非遞減且最後一格精確為 1。
func TailCumulative(scores []float64, numbins int, lo, hi float64) ([]float64, error) {
	b, err := NewBinning(numbins, lo, hi)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, errs.ErrEmptySample
	}
	counts := Counts(scores, b)
	total := float64(len(scores))

	out := make([]float64, numbins)
	cum := 0
	for i := range numbins {
		cum += counts[numbins-1-i]
		out[i] = float64(cum) / total
	}
	return out, nil
}

// WeightedTailCumulative 與 TailCumulative 相同，但以事件權重累加，並以總權重正規化。
//
// 權重可以為負（部分 MC 產生器），因此曲線不保證單調；總權重必須 > 0。
func WeightedTailCumulative(scores, weights []float64, numbins int, lo, hi float64) ([]float64, error) {
	b, err := NewBinning(numbins, lo, hi)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, errs.ErrEmptySample
	}
	if len(scores) != len(weights) {
		return nil, errs.ErrLengthMismatch
	}
	sums := make([]float64, b.N)
	total := 0.0
	for j, x := range scores {
		sums[b.Index(x)] += weights[j]
		total += weights[j]
	}
	if !(total > 0) {
		return nil, errs.Warnf("total weight must be > 0, got %g", total)
	}

	out := make([]float64, numbins)
	cum := 0.0
	for i := range numbins {
		cum += sums[numbins-1-i]
		out[i] = cum / total
	}
	return out, nil
}

// TailFromCounts 由每箱事件數建立尾端累積曲線，可用於多個樣本合併後的計數。
func TailFromCounts(counts []int) ([]float64, error) {
	if len(counts) == 0 {
		return nil, errs.ErrBadBins
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil, errs.ErrEmptySample
	}
	n := len(counts)
	out := make([]float64, n)
	cum := 0
	for i := range n {
		cum += counts[n-1-i]
		out[i] = float64(cum) / float64(total)
	}
	return out, nil
}

// AddCounts 將 src 逐箱加到 dst
func AddCounts(dst, src []int) {
	for k := range min(len(dst), len(src)) {
		dst[k] += src[k]
	}
}
