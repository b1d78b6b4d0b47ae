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

// Package catalog 管理分析設定檔與樣本檔案的來源。
//
// 每個 fs.FS 的根目錄放分析設定（.yaml/.yml/.json），樣本事件表放在子目錄中
// （例如 data/ttbb.json.zst），由 Open 依路徑取出。
package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/setting"
)

var ErrDupName = errs.NewFatal("duplicate analysis name")

type Entry struct {
	Name       string
	ConfigName string
}

type Summary struct {
	Name     string   `json:"name"`
	Config   string   `json:"config"`
	NumBins  int      `json:"numbins"`
	Floor    float64  `json:"background_floor"`
	Stat     float64  `json:"stat"`
	Syst     float64  `json:"syst"`
	Samples  []string `json:"samples"`
	Weighted bool     `json:"weighted"`
}

type Catalog struct {
	byName   map[string]Entry
	settings map[string]*setting.Analysis
	names    []string // 用來穩定排序
	unique   map[string]struct{}
	config   *multiFS
	frozen   bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byName:   map[string]Entry{},
		settings: map[string]*setting.Analysis{},
		names:    make([]string, 0, 16),
		unique:   map[string]struct{}{},
		config:   multFS,
	}, nil
}

// NewAuto 建立 catalog 並註冊所有來源根目錄下的設定檔
func NewAuto(cfg ...fs.FS) (*Catalog, error) {
	c, err := New(cfg...)
	if err != nil {
		return nil, err
	}
	if err := c.RegisterAll(); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterAll 依檔名排序註冊所有設定檔。任何一個失敗則全部不註冊。
func (c *Catalog) RegisterAll() error {
	return c.Register(c.config.Configs()...)
}

// Register 解析設定檔並以分析名稱（小寫）註冊；名稱為空時使用去掉副檔名的檔名。
// 全部檢查通過才寫入。
func (c *Catalog) Register(configNames ...string) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	type parsed struct {
		e Entry
		a *setting.Analysis
	}
	batch := make([]parsed, 0, len(configNames))
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for _, file := range configNames {
		if err := validFileName(file); err != nil {
			return err
		}
		if _, ok := c.config.configs[file]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", file))
		}
		if _, ok := c.unique[file]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", file))
		}
		if _, ok := seenCfg[file]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", file))
		}
		a, err := c.parse(file)
		if err != nil {
			return errs.WrapWithExtra(err, "register analysis failed", "config="+file)
		}
		name := strings.ToLower(strings.TrimSpace(a.Name))
		if name == "" {
			name = strings.ToLower(strings.TrimSuffix(file, path.Ext(file)))
		}
		a.Name = name
		if _, ok := c.byName[name]; ok {
			return errs.WrapWithExtra(ErrDupName, "register analysis failed", "name="+name)
		}
		if _, ok := seenName[name]; ok {
			return errs.WrapWithExtra(ErrDupName, "register analysis failed", "name="+name)
		}
		seenName[name] = struct{}{}
		seenCfg[file] = struct{}{}
		batch = append(batch, parsed{e: Entry{Name: name, ConfigName: file}, a: a})
	}
	for _, p := range batch {
		c.unique[p.e.ConfigName] = struct{}{}
		c.byName[p.e.Name] = p.e
		c.settings[p.e.Name] = p.a
		c.names = append(c.names, p.e.Name)
	}
	sort.Strings(c.names)
	return nil
}

func (c *Catalog) parse(file string) (*setting.Analysis, error) {
	src, ok := c.config.GetFS(file)
	if !ok {
		return nil, errs.NewWarn("file name dose not exist in catalog")
	}
	raw, err := fs.ReadFile(src, file)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return setting.ByExt(file, raw)
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	m, ok := c.byName[name]
	return m, ok
}

// Analysis 回傳設定的副本，呼叫端可自由修改（例如覆寫 workers）
func (c *Catalog) Analysis(name string) (*setting.Analysis, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewWarn("name dose not exist in catalog")
	}
	a := *c.settings[e.Name]
	floor := a.Floor()
	a.BackgroundFloor = &floor
	a.Samples = append([]setting.SampleSetting(nil), a.Samples...)
	return &a, nil
}

func (c *Catalog) Names() []string {
	if len(c.names) == 0 {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) All() []Entry {
	m := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		m = append(m, c.byName[n])
	}
	return m
}

// Summaries 依名稱排序的分析摘要
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c.names))
	for _, n := range c.names {
		a := c.settings[n]
		labels := make([]string, len(a.Samples))
		for i, s := range a.Samples {
			labels[i] = s.Label
		}
		out = append(out, Summary{
			Name:     n,
			Config:   c.byName[n].ConfigName,
			NumBins:  a.NumBins,
			Floor:    a.Floor(),
			Stat:     a.Stat,
			Syst:     a.Syst,
			Samples:  labels,
			Weighted: a.Weighted,
		})
	}
	return out
}

// Open 開啟樣本檔（來源中的相對路徑，例如 data/ttbb.json.zst）
func (c *Catalog) Open(file string) (fs.File, error) {
	file = path.Clean(strings.TrimPrefix(file, "./"))
	src, ok := c.config.GetFS(file)
	if !ok {
		return nil, errs.NewWithExtra(errs.Warn, "sample file dose not exist in catalog", "file="+file)
	}
	f, err := src.Open(file)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "open sample file failed", "file="+file)
	}
	return f, nil
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\\\ :) ", file))
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	if !isConfig(file) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	// 3) 不能以 . 開頭（防止直接 .yaml / .yml）
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

func isConfig(file string) bool {
	lower := strings.ToLower(file)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")
}

type multiFS struct {
	src     []fs.FS
	index   map[string]int      // path -> src index
	configs map[string]struct{} // 根目錄下的設定檔
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:     src,
		index:   make(map[string]int, 256),
		configs: make(map[string]struct{}, 16),
	}

	// eager validate: build index and detect duplicates
	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasPrefix(path.Base(p), ".") {
				return nil
			}
			if prev, ok := m.index[p]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate file %q in fs[%d] and fs[%d]", p, prev, i))
			}
			m.index[p] = i
			if !strings.Contains(p, "/") && isConfig(p) {
				m.configs[p] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Configs 根目錄下的設定檔名稱（已排序）
func (m *multiFS) Configs() []string {
	out := make([]string, 0, len(m.configs))
	for n := range m.configs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
