package stats

import (
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zintix-labs/cutlab/errs"
)

// EfficiencyCI 通過 k / 總數 n 的效率與 Clopper–Pearson 信賴區間
func EfficiencyCI(k, n int, confidence float64) (float64, CI) {
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}
	return proportionCICP(k, n, confidence)
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// AUC ROC 曲線下面積，以梯形法積分 tpr 對 fpr。
//
// 曲線需依 fpr 非遞減排列（位置 0 為最緊的切點即符合），會自動補上原點 (0, 0)。
// 補上原點後的面積包含最緊切點之前的那一段，與只從 fpr[0] 開始積分的數值不能直接比較。
func AUC(fpr, tpr []float64) (float64, error) {
	if len(fpr) != len(tpr) {
		return 0, errs.ErrLengthMismatch
	}
	if len(fpr) == 0 {
		return 0, errs.ErrEmptySample
	}
	x := make([]float64, 0, len(fpr)+1)
	y := make([]float64, 0, len(tpr)+1)
	if fpr[0] != 0 || tpr[0] != 0 {
		x = append(x, 0)
		y = append(y, 0)
	}
	for i := range fpr {
		if i > 0 && fpr[i] < fpr[i-1] {
			return 0, errs.Warnf("auc: fpr must be non-decreasing (position %d)", i)
		}
		x = append(x, fpr[i])
		y = append(y, tpr[i])
	}
	if len(x) < 2 {
		return 0, nil
	}
	return integrate.Trapezoidal(x, y), nil
}
