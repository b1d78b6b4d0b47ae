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
	"math"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/hist"
	"github.com/zintix-labs/cutlab/sample"
	"github.com/zintix-labs/cutlab/setting"
	"github.com/zintix-labs/cutlab/stats"
)

// PostCut 對每個特徵欄位，輸出各樣本中分箱索引 >= k 的事件的加權分佈（權重 × 縮放因子）。
//
// 同一欄位的所有樣本共用分箱，範圍取通過事件的最小/最大值；沒有事件通過的欄位不輸出。
// 每個樣本都必須有該欄位。
func PostCut(b hist.Binning, k int, tb *sample.Table, samples []sample.Sample, columns []string, bins int) ([]*stats.FeatureReport, error) {
	if bins < 1 {
		return nil, errs.ErrBadBins
	}
	passes := make([][]bool, len(samples))
	for i := range samples {
		passes[i] = b.Pass(samples[i].Scores, k)
	}

	out := make([]*stats.FeatureReport, 0, len(columns)*len(samples))
	for _, col := range columns {
		values := make([][]float64, len(samples))
		weights := make([][]float64, len(samples))
		lo, hi := math.Inf(1), math.Inf(-1)
		for i, s := range samples {
			v, ok := tb.Column(s.Label, col)
			if !ok {
				return nil, errs.NewWithExtra(errs.Warn, "post-cut: missing column "+col, "sample="+s.Label)
			}
			values[i] = sample.Select(v, passes[i])
			if len(s.Weights) > 0 {
				weights[i] = sample.Select(s.Weights, passes[i])
			}
			for _, x := range values[i] {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					continue
				}
				lo = math.Min(lo, x)
				hi = math.Max(hi, x)
			}
		}
		if math.IsInf(lo, 1) {
			continue
		}
		if !(hi > lo) {
			hi = lo + 1
		}
		fb, err := hist.NewBinning(bins, lo, hi)
		if err != nil {
			return nil, err
		}
		for i, s := range samples {
			d := hist.Distribute(values[i], weights[i], s.ScaleFactor, fb)
			out = append(out, &stats.FeatureReport{
				Column:  col,
				Label:   s.Label,
				Edges:   d.Edges,
				Values:  d.Values,
				Entries: d.Entries,
			})
		}
	}
	return out, nil
}

func postCut(rep *stats.ScanReport, a *setting.Analysis, b hist.Binning, k int, tb *sample.Table, samples []sample.Sample) error {
	cols := a.FeatureColumns()
	if len(cols) == 0 {
		return nil
	}
	fr, err := PostCut(b, k, tb, samples, cols, a.Features.Bins)
	if err != nil {
		return err
	}
	rep.PostCut = fr
	return nil
}
