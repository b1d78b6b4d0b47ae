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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/cutlab"
	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/server/logger"
)

// 預設值
const (
	DefaultMaxBody     int64 = 8 << 20
	DefaultScanTimeout       = 60 * time.Second
	DefaultHistory           = 50
	DefaultMaxBins           = 200000
	DefaultMaxEvents         = 5000000
)

type SvrCfg struct {
	Log  *slog.Logger
	Lab  *cutlab.Lab
	Addr string

	// MaxBody POST /v1/scan 的請求上限（bytes）
	MaxBody int64
	// ScanTimeout 單次掃描請求的上限
	ScanTimeout time.Duration
	// History GET /v1/history 預設筆數
	History int
	// MaxBins 單次請求的分箱上限（numbins、dist_bins、features.bins）
	MaxBins int
	// MaxEvents 單次請求合成樣本的事件總數上限
	MaxEvents int
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	if _, err := sc.Lab.Summary(); err != nil {
		return err
	}
	if sc.MaxBody <= 0 {
		sc.MaxBody = DefaultMaxBody
	}
	if sc.ScanTimeout <= 0 {
		sc.ScanTimeout = DefaultScanTimeout
	}
	if sc.MaxBins <= 0 {
		sc.MaxBins = DefaultMaxBins
	}
	if sc.MaxEvents <= 0 {
		sc.MaxEvents = DefaultMaxEvents
	}
	if sc.History <= 0 {
		sc.History = DefaultHistory
	}
	// for 資源管理
	sc.History = min(1000, sc.History)
	return nil
}
