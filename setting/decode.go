package setting

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/cutlab/errs"
	"gopkg.in/yaml.v3"
)

// ByYAML
// 會讀取 YAML 設定、補上預設值並執行基本檢查後回傳。多寫/拼錯欄位直接報錯。
func ByYAML(data []byte) (*Analysis, error) {
	a := &Analysis{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(a); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := a.init(); err != nil {
		return nil, errs.Wrap(err, "analysis setting initialized err")
	}
	return a, nil
}

// ByJSON
// 會讀取 Json 設定、補上預設值並執行基本檢查後回傳
func ByJSON(data []byte) (*Analysis, error) {
	a := &Analysis{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(a); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := a.init(); err != nil {
		return nil, errs.Wrap(err, "analysis setting initialized err")
	}
	return a, nil
}

// ByExt 依副檔名選擇解碼器
func ByExt(filename string, raw []byte) (*Analysis, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ByYAML(raw)
	case ".json":
		return ByJSON(raw)
	default:
		return nil, errs.Fatalf("unsupported config format: %q", filename)
	}
}

// Init 對程式內組出的設定（例如 HTTP 請求）補預設值並檢查
func (a *Analysis) Init() error {
	return a.init()
}
