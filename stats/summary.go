package stats

import (
	mstats "github.com/montanaflynn/stats"

	"github.com/zintix-labs/cutlab/errs"
)

// ScoreSummary 分類器分數的描述統計（未加權）
type ScoreSummary struct {
	Mean   float64 `json:"Mean"`
	Std    float64 `json:"Std"`
	Min    float64 `json:"Min"`
	Q1     float64 `json:"Q1"`
	Median float64 `json:"Median"`
	Q3     float64 `json:"Q3"`
	Max    float64 `json:"Max"`
}

// Summarize 計算分數的平均、標準差與四分位數
func Summarize(scores []float64) (ScoreSummary, error) {
	if len(scores) == 0 {
		return ScoreSummary{}, errs.ErrEmptySample
	}
	data := mstats.Float64Data(scores)
	var out ScoreSummary
	var err error
	if out.Mean, err = data.Mean(); err != nil {
		return out, errs.Wrap(err, "summarize: mean")
	}
	if out.Std, err = data.StandardDeviation(); err != nil {
		return out, errs.Wrap(err, "summarize: std")
	}
	if out.Min, err = data.Min(); err != nil {
		return out, errs.Wrap(err, "summarize: min")
	}
	if out.Max, err = data.Max(); err != nil {
		return out, errs.Wrap(err, "summarize: max")
	}
	if out.Median, err = data.Median(); err != nil {
		return out, errs.Wrap(err, "summarize: median")
	}
	// Quartile 需要至少兩筆
	if len(scores) < 2 {
		out.Q1, out.Q3 = out.Median, out.Median
		return out, nil
	}
	q, err := data.Quartile(data)
	if err != nil {
		return out, errs.Wrap(err, "summarize: quartile")
	}
	out.Q1, out.Q3 = q.Q1, q.Q3
	return out, nil
}
