package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/cutlab/perf"
)

// makefile runner
//
//	go run ./cmd/run -demo -all
//	go run ./cmd/run -config ./analyses/tthh.yaml -format json -archive runs.db
func main() {
	cfg, err := bindVar(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := perf.Run(cfg.pprofmode, "", cfg.execute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
