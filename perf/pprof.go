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

// Package perf 為掃描流程加上 pprof 取樣，輸出檔可直接給 go tool pprof 或 PGO 使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/cutlab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Modes 可用的取樣模式，"" 表示不取樣
var Modes = []string{"", "cpu", "heap", "allocs"}

// Run 依 mode 執行 exe 並寫出對應的 profile 到 dir（空字串時用 DefaultDir）。
//
//	go run ./cmd/run -demo -p cpu
//
// exe 的錯誤原樣回傳；profile 檔的 I/O 錯誤為 Fatal。
func Run(mode, dir string, exe func() error) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		return exe()
	case "cpu":
		return cpu(dir, exe)
	case "heap":
		return snapshot(dir, "heap", exe)
	case "allocs":
		return snapshot(dir, "allocs", exe)
	default:
		return errs.Warnf("unknown pprof mode %q (want cpu|heap|allocs)", mode)
	}
}

func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.WrapWithExtra(err, "create profiling dir failed", "dir="+dir)
	}
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return nil, errs.WrapWithExtra(err, "create profile failed", "name="+name)
	}
	return f, nil
}

// cpu 涵蓋 exe 的整段執行
func cpu(dir string, exe func() error) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 結束後寫出一次 heap（in-use）或 allocs（累積配置）
func snapshot(dir, name string, exe func() error) error {
	runErr := exe()

	f, err := create(dir, name)
	if err != nil {
		return err
	}
	defer f.Close()

	if name == "heap" {
		// 讓快照只剩存活物件
		runtime.GC()
	}
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Fatalf("profile %s not available", name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile failed")
	}
	return runErr
}
