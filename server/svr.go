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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/server/api"
	"github.com/zintix-labs/cutlab/server/app"
	"github.com/zintix-labs/cutlab/server/logger"
	"github.com/zintix-labs/cutlab/server/netsvr"
	"github.com/zintix-labs/cutlab/server/svrcfg"
)

// Run 組裝並啟動預設的 HTTP server（chi，監聽 SvrCfg.Addr 或 :5808）。
//
//  1. 驗證 SvrCfg（logger、已凍結的 Lab）。
//  2. 建立 netsvr 並註冊 middleware 與路由。
//  3. 交給 app 管理生命週期；停止時依序關閉 archive 與非同步 logger。
//
// 設定驗證失敗時錯誤會同時輸出到 stderr，避免 logger 本身不可用時看不到原因。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但由呼叫端注入 NetSvr（自訂 listener、timeout，或掛到既有服務下）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}

	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return err
	}

	a := app.NewWith(svr)
	if st := sCfg.Lab.Archive(); st != nil {
		a.Register(app.OnStop(st.Close))
	}
	if ah, ok := sCfg.Log.Handler().(*logger.AsyncHandler); ok {
		a.Register(app.OnStop(func() error { ah.Close(); return nil }))
	}

	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[cutlab] listening on http://localhost" + s.Address())
	} else {
		sCfg.Log.Info("[cutlab] listening")
	}
	err := a.Run()
	if err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
	return err
}
