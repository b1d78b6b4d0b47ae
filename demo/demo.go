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

// Package demo 內建 tt̄HH 分析（合成樣本），不需要外部事件檔即可跑完整流程。
package demo

import (
	"log/slog"

	"github.com/zintix-labs/cutlab"
	"github.com/zintix-labs/cutlab/demo/demo_configs"
	"github.com/zintix-labs/cutlab/errs"
)

// NewLab 註冊所有 demo 分析並凍結
func NewLab(log *slog.Logger) (*cutlab.Lab, error) {
	lab, err := cutlab.NewAuto(log, cutlab.Configs(demo_configs.FS))
	if err != nil {
		return nil, errs.Wrap(err, "new demo lab failed")
	}
	return lab, nil
}
