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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/cutlab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
//   - ctx timeout/cancel → 504/408
//   - errs.Warn         → 400（設定或參數不合法）
//   - errs.Log          → 422（設定合法，但沒有切點滿足背景下限）
//   - errs.Fatal        → 500
//
// 映射只存在於 HTTP 邊界層，errs 本身不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	switch errs.Level(err) {
	case errs.Warn:
		return http.StatusBadRequest
	case errs.Log:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Body 錯誤回應
type Body struct {
	Status int    `json:"status"`
	Level  string `json:"level,omitempty"`
	Error  string `json:"error"`
}

// Errs 寫出 JSON 錯誤回應
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{
		Status: status,
		Level:  errs.ErrLv(errs.Level(err)),
		Error:  err.Error(),
	})
}

// Log 只記錄 server 端關心的錯誤：408/422 為 Warn，5xx 為 Error；400 交給 access log
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusUnprocessableEntity:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
