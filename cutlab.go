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

// Package cutlab 提供切點掃描實驗室的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把兩個地基組裝在一起：
//  1. Catalog：分析目錄，定義有哪些分析、各自的設定檔與樣本檔來源（fs.FS）。
//  2. Archive（選用）：掃描歷史，每次執行的報告都會寫入。
//
// 一次分析的流程為：
//
//	setting.Analysis -> sample.Table -> hist -> yield -> scan -> stats.ScanReport
//
// Lab 本身不綁定任何檔案路徑：設定檔與樣本檔一律由 fs.FS 提供（go:embed 或 os.DirFS）。
//
//	lab, _ := cutlab.NewAuto(log, cutlab.Configs(os.DirFS("analyses")))
//	rep, _ := lab.Run(ctx, "tthh_4b", false)
//	rep.StdOut(0)
package cutlab

import (
	"context"
	"io"
	"io/fs"
	"log/slog"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/cutlab/archive"
	"github.com/zintix-labs/cutlab/catalog"
	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/sample"
	"github.com/zintix-labs/cutlab/setting"
	"github.com/zintix-labs/cutlab/stats"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 分析實驗室
//
// 註冊階段建立 catalog 並檢查所有設定檔；Freeze 之後才能執行分析。
// 執行階段可併發呼叫 Run / RunAnalysis：每次執行都是獨立的管線，只共用唯讀的 catalog。
type Lab struct {
	cat *catalog.Catalog
	log *slog.Logger
	arc *archive.Store
	sum []catalog.Summary
}

// New 建立 Lab，log 為 nil 時不輸出日誌
func New(log *slog.Logger, cfgs []fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{cat: cata, log: log}, nil
}

// NewAuto 建立 Lab、註冊所有設定檔並直接進入執行階段
func NewAuto(log *slog.Logger, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(log, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(configNames ...string) error {
	return l.cat.Register(configNames...)
}

// RegisterAll 註冊所有來源根目錄下的設定檔：fail-fast、原子性、依檔名排序
func (l *Lab) RegisterAll() error {
	if err := l.cat.RegisterAll(); err != nil {
		return err
	}
	if len(l.cat.Names()) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return nil
}

// Freeze 結束註冊階段，並固定分析摘要
func (l *Lab) Freeze() {
	l.cat.Freeze()
	l.sum = l.cat.Summaries()
}

// SetArchive 之後每次成功的分析都寫入 st
func (l *Lab) SetArchive(st *archive.Store) {
	l.arc = st
}

func (l *Lab) Archive() *archive.Store {
	return l.arc
}

func (l *Lab) Logger() *slog.Logger {
	return l.log
}

func (l *Lab) Names() []string {
	return l.cat.Names()
}

func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.sum, nil
}

// Analysis 取得設定副本
func (l *Lab) Analysis(name string) (*setting.Analysis, error) {
	return l.cat.Analysis(name)
}

// LoadTable 依設定讀取所有樣本：檔案（經由 catalog）、內嵌分數或合成資料
func (l *Lab) LoadTable(a *setting.Analysis) (*sample.Table, error) {
	tb := sample.NewTable()
	for i := range a.Samples {
		s := &a.Samples[i]
		switch {
		case s.File != "":
			if err := l.loadFile(tb, s.Label, s.File); err != nil {
				return nil, err
			}
		case s.Generate != nil:
			f, err := s.Generate.Frame(s.Label)
			if err != nil {
				return nil, errs.WrapWithExtra(err, "generate sample failed", "sample="+s.Label)
			}
			if err := tb.Add(s.Label, f.Columns); err != nil {
				return nil, err
			}
		default:
			cols := map[string][]float64{sample.ColScore: s.Scores}
			if len(s.Weights) > 0 {
				cols[sample.ColWeight] = s.Weights
			}
			if err := tb.Add(s.Label, cols); err != nil {
				return nil, err
			}
		}
	}
	return tb, nil
}

func (l *Lab) loadFile(tb *sample.Table, label, file string) error {
	f, err := l.cat.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return tb.Load(label, file, f)
}

// Run 執行目錄中的分析
func (l *Lab) Run(ctx context.Context, name string, showpb bool) (*stats.ScanReport, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	a, err := l.cat.Analysis(name)
	if err != nil {
		return nil, err
	}
	rep, _, err := l.RunAnalysis(ctx, a, showpb)
	return rep, err
}

// RunAnalysis 執行任意設定（例如 HTTP 請求帶入的設定），有 archive 時回傳 run id
func (l *Lab) RunAnalysis(ctx context.Context, a *setting.Analysis, showpb bool) (*stats.ScanReport, string, error) {
	tb, err := l.LoadTable(a)
	if err != nil {
		return nil, "", err
	}
	rep, err := Analyze(ctx, l.log, a, tb, showpb)
	if err != nil {
		return nil, "", err
	}
	if l.arc == nil {
		return rep, "", nil
	}
	id, err := l.arc.Save(ctx, rep)
	if err != nil {
		return rep, "", err
	}
	l.log.Debug("report archived", slog.String("analysis", a.Name), slog.String("run_id", id))
	return rep, id, nil
}

// Outcome RunAll 中單一分析的結果
type Outcome struct {
	Name   string
	RunID  string
	Report *stats.ScanReport
	Err    error
}

// RunAll 依名稱順序執行目錄中的每個分析。
//
// 單一分析失敗（例如沒有可接受的切點）只記錄在該 Outcome，不中斷其他分析；
// 只有 ctx 取消時才回傳 error。
func (l *Lab) RunAll(ctx context.Context, showpb bool) ([]Outcome, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	names := l.cat.Names()
	bar := pb.StartNew(len(names))
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	defer bar.Finish()

	out := make([]Outcome, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, errs.Wrap(err, "run all canceled")
		}
		o := Outcome{Name: name}
		a, err := l.cat.Analysis(name)
		if err == nil {
			o.Report, o.RunID, err = l.RunAnalysis(ctx, a, false)
		}
		if err != nil {
			o.Err = err
			l.log.Error("analysis failed", slog.String("analysis", name), slog.String("errlv", errs.ErrLv(errs.Level(err))), slog.Any("err", err))
		}
		out = append(out, o)
		bar.Increment()
	}
	return out, nil
}
