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
	"sort"
	"strconv"

	"github.com/zintix-labs/cutlab/errs"
)

// Phase 特徵集合的選擇
type Phase uint8

const (
	HighLevel   Phase = iota + 1 // 只有事件層級的高階變數
	ObjectLevel                  // 只有物件（lepton / jet）變數
	Full                         // 兩者皆有
)

// ParsePhase 解析 1/2/3 或 high/object/full
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "1", "high", "highlevel":
		return HighLevel, nil
	case "2", "object", "objectlevel":
		return ObjectLevel, nil
	case "3", "full", "":
		return Full, nil
	}
	return 0, errs.Warnf("unknown feature phase %q", s)
}

// Field 一個特徵欄位：(entity, index, attribute)。Index 為 0 表示事件層級變數。
type Field struct {
	Entity    string `json:"entity"    yaml:"entity"`
	Index     int    `json:"index"     yaml:"index"`
	Attribute string `json:"attribute" yaml:"attribute"`
}

// Column 欄位在事件表中的名稱，例如 jet3pT、lepton1eta、m_bb
func (f Field) Column() string {
	if f.Index == 0 {
		if f.Entity == "" {
			return f.Attribute
		}
		return f.Entity + f.Attribute
	}
	return f.Entity + strconv.Itoa(f.Index) + f.Attribute
}

// Object 一類物件與其屬性，例如 jet × 10 × [pT eta phi btag]
type Object struct {
	Entity     string   `json:"entity"     yaml:"entity"`
	Count      int      `json:"count"      yaml:"count"`
	Attributes []string `json:"attributes" yaml:"attributes"`
}

// Schema 宣告式的特徵結構，由外部讀檔流程決定要讀哪些欄位
type Schema struct {
	HighLevel []string `json:"high_level" yaml:"high_level"`
	Objects   []Object `json:"objects"    yaml:"objects"`
}

// DefaultSchema 多噴流末態分析常用的特徵：事件層級變數、2 個輕子、jets 個噴流
func DefaultSchema(jets int) Schema {
	return Schema{
		HighLevel: []string{"numjet", "numlep", "btag", "srap", "cent", "m_bb", "h_b", "met", "metPhi", "dr1", "dr2"},
		Objects: []Object{
			{Entity: "lepton", Count: 2, Attributes: []string{"flav", "pT", "eta", "phi"}},
			{Entity: "jet", Count: max(0, jets), Attributes: []string{"pT", "eta", "phi", "btag"}},
		},
	}
}

// Fields 依 Phase 展開欄位，依欄位名稱排序
func (s Schema) Fields(p Phase) []Field {
	out := make([]Field, 0, 64)
	if p == HighLevel || p == Full {
		for _, name := range s.HighLevel {
			out = append(out, Field{Attribute: name})
		}
	}
	if p == ObjectLevel || p == Full {
		for _, o := range s.Objects {
			for i := 1; i <= o.Count; i++ {
				for _, a := range o.Attributes {
					out = append(out, Field{Entity: o.Entity, Index: i, Attribute: a})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column() < out[j].Column() })
	return out
}

// Columns 依 Phase 展開後的欄位名稱
func (s Schema) Columns(p Phase) []string {
	fs := s.Fields(p)
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Column()
	}
	return out
}
