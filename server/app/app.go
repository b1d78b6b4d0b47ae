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

package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdown = 5 * time.Second

// App 啟動所有註冊的 Component，並在收到 OS 信號、ctx 結束或任一 Component 返回時，
// 依註冊順序呼叫 Shutdown。
type App struct {
	comps   []Component
	timeout time.Duration
}

// New 建立一個新的 App 實例。
func New() *App { return &App{timeout: defaultShutdown} }

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將一個 Component 註冊到 App 中，該 Component 將在 Run 時被管理。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// SetShutdownTimeout 調整優雅關閉的期限（長時間的掃描請求可能需要更久）
func (a *App) SetShutdownTimeout(td time.Duration) {
	if td > 0 {
		a.timeout = td
	}
}

// Run 等同 RunContext(context.Background())
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext 並行啟動所有 Component 並阻塞：
//   - 收到 SIGINT/SIGTERM 或 ctx 結束：優雅關閉並回傳 nil
//   - 任一 Component Run 返回：優雅關閉並回傳該錯誤（http.ErrServerClosed 視為正常）
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var err error
	select {
	case <-quit:
	case <-ctx.Done():
	case err = <-errCh:
	}
	shutdownErr := a.gracefulShutdown(a.timeout)
	if err != nil && !isServerClosed(err) {
		return err
	}
	return shutdownErr
}

// gracefulShutdown 在給定的 timeout 內依序呼叫所有 Component.Shutdown，回傳所有錯誤
func (a *App) gracefulShutdown(td time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	var all []error
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}

func isServerClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}
