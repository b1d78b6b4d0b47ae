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

// Distribution 加權分布（給外部繪圖用）
//
// Values[k] 為落在 [Edges[k], Edges[k+1]) 的權重和；Entries 為實際落入範圍的事件數。
// 與 TailCumulative 不同，範圍外的值直接略過而不是夾到邊界。
type Distribution struct {
	Edges   []float64 `json:"edges"   yaml:"edges"`
	Values  []float64 `json:"values"  yaml:"values"`
	Entries int       `json:"entries" yaml:"entries"`
}

// Distribute 以 weights*scale 填入分布；weights 為 nil 時每筆權重為 1。
//
// weights 長度不足時，多出的 values 視為權重 1。呼叫端應先用 sample.Validate 檢查長度。
func Distribute(values, weights []float64, scale float64, b Binning) Distribution {
	d := Distribution{
		Edges:  b.Edges(),
		Values: make([]float64, b.N),
	}
	for j, x := range values {
		k, ok := b.Locate(x)
		if !ok {
			continue
		}
		w := 1.0
		if j < len(weights) {
			w = weights[j]
		}
		d.Values[k] += w * scale
		d.Entries++
	}
	return d
}

// Total 回傳分布的權重總和
func (d Distribution) Total() float64 {
	sum := 0.0
	for _, v := range d.Values {
		sum += v
	}
	return sum
}
