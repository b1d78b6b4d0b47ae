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

// Package signif 提供發現顯著性（discovery significance）的漸近公式。
package signif

import "math"

// sigmaEps 背景絕對不確定度低於此值時，視為沒有不確定度，改用簡化公式。
const sigmaEps = 0.01

// ZPoisson 回傳以標準差為單位的漸近 Poisson 顯著性。
//
//   - s    : 預期訊號事件數
//   - b    : 預期背景事件數
//   - stat : 背景的相對 MC 統計不確定度
//   - syst : 背景的相對系統不確定度
//
// 公式本身已含資料的 sqrt(b) 統計漲落，stat/syst 只描述背景估計額外的不確定度，
// 兩者以平方和合併後乘上 b 得到絕對不確定度 sigma。
//
// 退化輸入（s<=0、b<=0）回傳 0；數值上根號內為負或非有限值時也回傳 0，不會 panic。
func ZPoisson(s, b, stat, syst float64) float64 {
	if !(s > 0) || !(b > 0) {
		return 0
	}
	n := s + b
	sigma := math.Sqrt(stat*stat+syst*syst) * b

	var f1, f2 float64
	if sigma < sigmaEps {
		// 不確定度趨近 0 時，大致退化為 s/sqrt(b)
		f1 = n * math.Log(n/b)
		f2 = n - b
	} else {
		s2 := sigma * sigma
		f1 = n * math.Log(n*(b+s2)/(b*b+n*s2))
		f2 = (b * b / s2) * math.Log(1+s2*(n-b)/(b*(b+s2)))
	}

	arg := 2 * (f1 - f2)
	if !(arg >= 0) || math.IsInf(arg, 0) {
		return 0
	}
	return math.Sqrt(arg)
}

// SimpleZ 是 s/sqrt(b) 的近似，只供報表對照。
func SimpleZ(s, b float64) float64 {
	if !(s > 0) || !(b > 0) {
		return 0
	}
	return s / math.Sqrt(b)
}
