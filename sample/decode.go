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
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/cutlab/errs"
	"gopkg.in/yaml.v3"
)

// Frame 一個樣本在檔案中的樣子：欄位名稱 -> 每筆事件的值
//
//	label: ttbb
//	columns:
//	  score:  [0.12, 0.93, ...]
//	  weight: [1.0, 0.98, ...]
//	  m_bb:   [...]
type Frame struct {
	Label   string               `json:"label"   yaml:"label"`
	Columns map[string][]float64 `json:"columns" yaml:"columns"`
}

const zstSuffix = ".zst"

// Decode 依檔名副檔名解碼一個 Frame。支援 .json / .yaml / .yml，
// 可再加上 .zst（例如 ttbb.json.zst）表示整個檔案經 zstd 壓縮。
func Decode(name string, r io.Reader) (*Frame, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "read event table failed", "file="+name)
	}
	base := strings.ToLower(name)
	if strings.HasSuffix(base, zstSuffix) {
		zr, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, errs.WrapWithExtra(err, "create zstd reader failed", "file="+name)
		}
		defer zr.Close()
		if raw, err = io.ReadAll(zr); err != nil {
			return nil, errs.WrapWithExtra(err, "read decompressed data failed", "file="+name)
		}
		base = strings.TrimSuffix(base, zstSuffix)
	}

	f := &Frame{}
	switch filepath.Ext(base) {
	case ".json":
		if err := json.Unmarshal(raw, f); err != nil {
			return nil, errs.WrapWithExtra(err, "decode json event table failed", "file="+name)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil {
			return nil, errs.WrapWithExtra(err, "decode yaml event table failed", "file="+name)
		}
	default:
		return nil, errs.NewWithExtra(errs.Warn, "unsupported event table format", "file="+name)
	}
	if len(f.Columns) == 0 {
		return nil, errs.NewWithExtra(errs.Warn, "event table has no columns", "file="+name)
	}
	return f, nil
}

// Encode 將 Frame 寫成 JSON；compress 為 true 時以 zstd 壓縮（檔名應為 *.json.zst）
func Encode(w io.Writer, f *Frame, compress bool) error {
	b, err := json.Marshal(f)
	if err != nil {
		return errs.Wrap(err, "encode event table failed")
	}
	if !compress {
		_, err = w.Write(b)
		if err != nil {
			return errs.Wrap(err, "write event table failed")
		}
		return nil
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "create zstd writer failed")
	}
	if _, err := zw.Write(b); err != nil {
		_ = zw.Close()
		return errs.Wrap(err, "write event table failed")
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "close zstd writer failed")
	}
	return nil
}

// Load 解碼後加入事件表。label 非空時覆蓋檔案中的名稱。
func (t *Table) Load(label, name string, r io.Reader) error {
	f, err := Decode(name, r)
	if err != nil {
		return err
	}
	if label != "" {
		f.Label = label
	}
	return t.Add(f.Label, f.Columns)
}
