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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/cutlab"
	"github.com/zintix-labs/cutlab/archive"
	"github.com/zintix-labs/cutlab/demo"
	"github.com/zintix-labs/cutlab/server"
	"github.com/zintix-labs/cutlab/server/logger"
	"github.com/zintix-labs/cutlab/server/svrcfg"
)

// lab server：預設載入內建 demo 分析，-config 可改為目錄
func main() {
	cfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := server.Run(cfg); err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr        string
	LogMode     string
	Config      string
	Archive     string
	ScanTimeout time.Duration
	MaxBody     int64
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.Config, "config", "", "directory of analyses (default: embedded demo)")
	flag.StringVar(&cfg.Archive, "archive", archive.Memory, "sqlite file for run history")
	flag.DurationVar(&cfg.ScanTimeout, "scan-timeout", svrcfg.DefaultScanTimeout, "per request scan timeout")
	flag.Int64Var(&cfg.MaxBody, "max-body", svrcfg.DefaultMaxBody, "max POST /v1/scan body in bytes")
	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	log, _ := logger.NewAsync(4096, mode)

	var lab *cutlab.Lab
	if cfg.Config != "" {
		lab, err = cutlab.NewAuto(log, cutlab.Configs(os.DirFS(cfg.Config)))
	} else {
		lab, err = demo.NewLab(log)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Archive != "" {
		st, err := archive.Open(cfg.Archive)
		if err != nil {
			return nil, err
		}
		lab.SetArchive(st)
	}
	return &svrcfg.SvrCfg{
		Log:         log,
		Lab:         lab,
		Addr:        cfg.Addr,
		ScanTimeout: cfg.ScanTimeout,
		MaxBody:     cfg.MaxBody,
	}, nil
}
