// Package app 定義長期運行元件的最小生命週期抽象。
package app

import (
	"context"
	"sync"
)

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
//   - Run() 應該是阻塞呼叫，直到元件停止為止（正常或錯誤）。
//   - Shutdown(ctx) 要求優雅關閉；實作方應該尊重 ctx deadline/cancel。
//
// 典型實例：HTTP Server、掃描歷史資料庫、非同步 logger。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// OnStop 把一個只需要在結束時釋放的資源（例如 archive.Store.Close）包成 Component。
// Run 會阻塞到 Shutdown 被呼叫為止。
func OnStop(fn func() error) Component {
	return &stopper{fn: fn, done: make(chan struct{})}
}

type stopper struct {
	fn   func() error
	done chan struct{}
	once sync.Once
}

func (s *stopper) Run() error {
	<-s.done
	return nil
}

func (s *stopper) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.fn()
		close(s.done)
	})
	return err
}
