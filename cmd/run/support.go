package main

import (
	"context"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/zintix-labs/cutlab"
	"github.com/zintix-labs/cutlab/archive"
	"github.com/zintix-labs/cutlab/demo/demo_configs"
	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/server/logger"
	"github.com/zintix-labs/cutlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	config    string
	demo      bool
	name      string
	all       bool
	format    string
	archive   string
	workers   int
	progress  bool
	logMode   string
	pprofmode string

	out io.Writer
	log *slog.Logger
}

func bindVar(args []string) (*config, error) {
	cfg := &config{out: os.Stdout}
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	fset.StringVar(&cfg.config, "config", "", "analysis file or directory of analyses")
	fset.BoolVar(&cfg.demo, "demo", false, "use the embedded demo analyses")
	fset.StringVar(&cfg.name, "name", "", "analysis to run (default: the only one, or see -all)")
	fset.BoolVar(&cfg.all, "all", false, "run every registered analysis")
	fset.StringVar(&cfg.format, "format", "table", "report format: table|json|yaml|none")
	fset.StringVar(&cfg.archive, "archive", "", "sqlite file to archive reports into")
	fset.IntVar(&cfg.workers, "workers", 0, "override workers of the selected analysis")
	fset.BoolVar(&cfg.progress, "pb", true, "show progress bar")
	fset.StringVar(&cfg.logMode, "log-mode", "dev", "log mode: dev|prod|silence")
	fset.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	return cfg, cfg.valid()
}

func (cfg *config) valid() error {
	if cfg.demo == (cfg.config != "") {
		return errs.NewWarn("exactly one of -demo, -config required")
	}
	if cfg.all && cfg.name != "" {
		return errs.NewWarn("-all and -name are exclusive")
	}
	if cfg.workers < 0 {
		return errs.NewWarn("-workers must be >= 0")
	}
	if cfg.format != "none" {
		if _, ok := stats.RenderByName(cfg.format); !ok {
			return errs.Warnf("unknown format %q", cfg.format)
		}
	}
	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return err
	}
	// 報告走 stdout，日誌一律 stderr
	cfg.log = logger.NewWriterLogger(os.Stderr, mode)
	return nil
}

// source 回傳設定來源與要註冊的檔名（nil 表示全部）
func (cfg *config) source() (fs.FS, []string, error) {
	if cfg.demo {
		return demo_configs.FS, nil, nil
	}
	st, err := os.Stat(cfg.config)
	if err != nil {
		return nil, nil, errs.Wrap(err, "config not found")
	}
	if st.IsDir() {
		return os.DirFS(cfg.config), nil, nil
	}
	// 單一檔案：所在目錄為根，資料檔以相對路徑引用
	return os.DirFS(filepath.Dir(cfg.config)), []string{filepath.Base(cfg.config)}, nil
}

func (cfg *config) newLab() (*cutlab.Lab, error) {
	src, files, err := cfg.source()
	if err != nil {
		return nil, err
	}
	lab, err := cutlab.New(cfg.log, cutlab.Configs(src))
	if err != nil {
		return nil, err
	}
	if files == nil {
		err = lab.RegisterAll()
	} else {
		err = lab.Register(files...)
	}
	if err != nil {
		return nil, err
	}
	lab.Freeze()
	if cfg.archive != "" {
		st, err := archive.Open(cfg.archive)
		if err != nil {
			return nil, err
		}
		lab.SetArchive(st)
	}
	return lab, nil
}

// execute 解析設定、執行分析並輸出報告
func (cfg *config) execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lab, err := cfg.newLab()
	if err != nil {
		return err
	}
	if st := lab.Archive(); st != nil {
		defer st.Close()
	}

	if cfg.all {
		return cfg.runAll(ctx, lab)
	}
	name := cfg.name
	if name == "" {
		names := lab.Names()
		if len(names) != 1 {
			return errs.Warnf("-name required, registered: %s", strings.Join(names, ", "))
		}
		name = names[0]
	}
	a, err := lab.Analysis(name)
	if err != nil {
		return err
	}
	if cfg.workers > 0 {
		a.Workers = cfg.workers
	}
	banner(a.Name, a.NumBins, a.Workers)
	start := time.Now()
	rep, _, err := lab.RunAnalysis(ctx, a, cfg.progress)
	if err != nil {
		return err
	}
	return cfg.write(rep, time.Since(start))
}

func (cfg *config) runAll(ctx context.Context, lab *cutlab.Lab) error {
	start := time.Now()
	outs, err := lab.RunAll(ctx, cfg.progress)
	if err != nil {
		return err
	}
	used := time.Since(start)
	failed := 0
	for _, o := range outs {
		if o.Err != nil {
			failed++
			continue
		}
		if err := cfg.write(o.Report, used); err != nil {
			return err
		}
	}
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "%d analyses, %d failed, %v\n", len(outs), failed, used.Round(time.Millisecond))
	if failed > 0 {
		return errs.Warnf("%d of %d analyses failed", failed, len(outs))
	}
	return nil
}

func (cfg *config) write(rep *stats.ScanReport, used time.Duration) error {
	switch cfg.format {
	case "none":
		return nil
	case "table":
		return rep.WriteTable(cfg.out, used)
	default:
		r, _ := stats.RenderByName(cfg.format)
		return rep.WriteWith(cfg.out, r)
	}
}

func banner(name string, bins, workers int) {
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "%s[ANALYSIS:%s] [BINS:%d] [WORKERS:%d]%s\n", green, name, bins, workers, reset)
}
