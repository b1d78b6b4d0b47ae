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

package sample

import (
	"fmt"
	"sort"

	"github.com/zintix-labs/cutlab/errs"
)

// 事件表的保留欄位
const (
	ColScore  = "score"
	ColWeight = "weight"
)

// Key 欄位索引：(樣本名稱, 變數名稱)
type Key struct {
	Label    string
	Variable string
}

// Table 欄式事件表。每個樣本的所有欄位長度一致，列索引即事件索引。
//
// 以 (label, variable) 兩軸索引，取代依名稱動態組出變數的做法。
type Table struct {
	cols   map[Key][]float64
	rows   map[string]int
	vars   map[string][]string
	labels []string
}

// NewTable 建立空的事件表
func NewTable() *Table {
	return &Table{
		cols: map[Key][]float64{},
		rows: map[string]int{},
		vars: map[string][]string{},
	}
}

// Add 加入一個樣本的所有欄位。同名樣本不可重複加入，欄位長度必須一致。
// 欄位切片直接被引用，呼叫端之後不可修改。
func (t *Table) Add(label string, columns map[string][]float64) error {
	if label == "" {
		return errs.NewWarn("table: label required")
	}
	if _, ok := t.rows[label]; ok {
		return errs.NewWithExtra(errs.Warn, "table: duplicate label", "label="+label)
	}
	if len(columns) == 0 {
		return errs.NewWithExtra(errs.Warn, "table: no columns", "label="+label)
	}
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	n := len(columns[names[0]])
	for _, name := range names {
		if len(columns[name]) != n {
			return errs.NewWithExtra(errs.Warn,
				fmt.Sprintf("table: column %s has %d rows, want %d", name, len(columns[name]), n),
				"label="+label)
		}
	}
	for _, name := range names {
		t.cols[Key{Label: label, Variable: name}] = columns[name]
	}
	t.rows[label] = n
	t.vars[label] = names
	t.labels = append(t.labels, label)
	return nil
}

// Column 取出欄位
func (t *Table) Column(label, variable string) ([]float64, bool) {
	c, ok := t.cols[Key{Label: label, Variable: variable}]
	return c, ok
}

// Rows 樣本的事件數；樣本不存在時為 0
func (t *Table) Rows(label string) int {
	return t.rows[label]
}

// Labels 依加入順序回傳樣本名稱
func (t *Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Variables 回傳樣本的欄位名稱（已排序）
func (t *Table) Variables(label string) []string {
	return append([]string(nil), t.vars[label]...)
}

// Require 檢查樣本含有所有指定欄位
func (t *Table) Require(label string, variables ...string) error {
	if _, ok := t.rows[label]; !ok {
		return errs.NewWithExtra(errs.Warn, "table: unknown label", "label="+label)
	}
	for _, v := range variables {
		if _, ok := t.cols[Key{Label: label, Variable: v}]; !ok {
			return errs.NewWithExtra(errs.Warn, "table: missing column "+v, "label="+label)
		}
	}
	return nil
}

// Sample 以 score / weight 欄位建立 Sample。weight 欄位不存在時視為每筆權重 1。
func (t *Table) Sample(label string, class Class, scale float64) (Sample, error) {
	if err := t.Require(label, ColScore); err != nil {
		return Sample{}, err
	}
	scores, _ := t.Column(label, ColScore)
	weights, _ := t.Column(label, ColWeight)
	s := Sample{
		Label:       label,
		Class:       class,
		Scores:      scores,
		Weights:     weights,
		ScaleFactor: scale,
	}
	return s, s.Validate()
}

// Select 回傳欄位中 pass[i] 為 true 的值（新的切片）
func Select(values []float64, pass []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if i < len(pass) && pass[i] {
			out = append(out, v)
		}
	}
	return out
}
