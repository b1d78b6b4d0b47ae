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

// Package errs 定義 cutlab 共用的分級錯誤型別。
//
// 分析流程中只有三種層級：
//   - Fatal：I/O、解碼、系統性問題，呼叫端無法自行修正。
//   - Warn ：輸入或設定不合法（numbins<=0、長度不一致…），在掃描開始前即回報。
//   - Log  ：統計上的「無結果」，例如沒有任何切點滿足背景下限。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// 分析領域的固定錯誤。請用 errors.Is 比對，不要修改其內容。
var (
	ErrNoAdmissibleCut = NewLog("no admissible cut: every candidate is below the background floor")
	ErrEmptySample     = NewWarn("empty sample: no scores")
	ErrLengthMismatch  = NewWarn("scores and weights length mismatch")
	ErrBadBins         = NewWarn("numbins must be > 0")
	ErrBadRange        = NewWarn("score range must satisfy hi > lo")
)

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文（例如樣本名稱）；
// Cause 可串接下層錯誤（wrap）；ErrLv 為嚴重度。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依層級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 以訊息包裝底層錯誤。
//
// ErrLevel 規則：
//   - 若 cause 已經是 *E，沿用其 ErrLv（例如包住 ErrEmptySample 仍然是 Warn）。
//   - 其他錯誤（標準庫、yaml、sqlite…）一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	r := New(Level(cause), msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，另外附加上下文，層級規則一致。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := NewWithExtra(Level(cause), msg, extra)
	r.Cause = cause
	return r
}

// Level 回傳錯誤鏈上第一個 *E 的層級；非本包錯誤視為 Fatal，nil 為 None。
func Level(err error) ErrLevel {
	if err == nil {
		return None
	}
	var e *E
	if errors.As(err, &e) {
		return e.ErrLv
	}
	return Fatal
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
