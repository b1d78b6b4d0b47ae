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

package scan

import (
	"context"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/cutlab/errs"
	"golang.org/x/sync/errgroup"
)

// minChunk 每個 worker 至少處理的位置數，太小的切分只會增加排程成本
const minChunk int = 1024

// ScanParallel 將位置切成連續區段並行計算，再以固定順序合併。
//
// 合併規則：取顯著性最大者，同分時取位置較小者（較嚴格的切點），
// 因此結果與 Scan 完全相同，與 goroutine 完成順序無關。
func (sc *Scanner) ScanParallel(ctx context.Context, tp, fp []float64, workers int, showpb bool) (*Result, error) {
	if err := sc.check(tp, fp); err != nil {
		return nil, err
	}
	n := len(tp)
	workers = max(1, workers)
	chunk := max(minChunk, (n+workers-1)/workers)
	parts := (n + chunk - 1) / chunk

	bar := pb.StartNew(n)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	defer bar.Finish()

	found := make([]candidate, parts)
	oks := make([]bool, parts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for p := 0; p < parts; p++ {
		from := p * chunk
		to := min(n, from+chunk)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// 每個 goroutine 只寫自己的 slot
			found[p], oks[p] = sc.scanRange(tp, fp, from, to)
			bar.Add(to - from)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errs.Wrap(err, "parallel scan canceled")
	}

	best := candidate{pos: -1}
	for p := range found {
		if !oks[p] {
			continue
		}
		c := found[p]
		if best.pos < 0 || c.z > best.z || (c.z == best.z && c.pos < best.pos) {
			best = c
		}
	}
	if best.pos < 0 {
		return nil, errs.ErrNoAdmissibleCut
	}
	return sc.result(best, tp, fp), nil
}
