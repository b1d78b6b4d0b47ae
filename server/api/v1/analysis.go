package v1

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zintix-labs/cutlab"
	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/server/httperr"
	"github.com/zintix-labs/cutlab/server/netsvr"
	"github.com/zintix-labs/cutlab/server/svrcfg"
	"github.com/zintix-labs/cutlab/setting"
	"github.com/zintix-labs/cutlab/stats"
)

// AnalysisHandler 分析相關路由，共用同一個 Lab
type AnalysisHandler struct {
	lab     *cutlab.Lab
	log     *slog.Logger
	maxBody int64
	timeout time.Duration
	history int
	maxBins int
	maxEvts int
}

func NewAnalysisHandler(cfg *svrcfg.SvrCfg) (*AnalysisHandler, error) {
	if cfg == nil || cfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &AnalysisHandler{
		lab:     cfg.Lab,
		log:     cfg.Log,
		maxBody: cfg.MaxBody,
		timeout: cfg.ScanTimeout,
		history: cfg.History,
		maxBins: cfg.MaxBins,
		maxEvts: cfg.MaxEvents,
	}, nil
}

// ScanResponse
type ScanResponse struct {
	RunID    string            `json:"run_id,omitempty"`
	UsedTime int64             `json:"used_ms"`
	Report   *stats.ScanReport `json:"report"`
}

// Analyses 已註冊分析的摘要
func (h *AnalysisHandler) Analyses(w http.ResponseWriter, r *http.Request) {
	sum, err := h.lab.Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Run 執行目錄中的分析 /v1/analyses/{name}/run
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(netsvr.URLParam(r, "name")))
	a, err := h.lab.Analysis(name)
	if err != nil {
		notFound(w, "analysis not found: "+name)
		return
	}
	h.run(w, r, a)
}

// Scan 執行請求帶入的分析設定（json）
func (h *AnalysisHandler) Scan(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		httperr.Errs(w, errs.NewWarn("read body failed: "+err.Error()))
		return
	}
	a, err := setting.ByJSON(raw)
	if err != nil {
		// 解碼錯誤來自請求內容
		if errs.Level(err) == errs.Fatal {
			err = errs.NewWithExtra(errs.Warn, "invalid analysis json", err.Error())
		}
		httperr.Errs(w, err)
		return
	}
	h.run(w, r, a)
}

func (h *AnalysisHandler) run(w http.ResponseWriter, r *http.Request, a *setting.Analysis) {
	if err := h.withinLimits(a); err != nil {
		httperr.Errs(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	rep, id, err := h.lab.RunAnalysis(ctx, a, false)
	if err != nil && rep == nil {
		httperr.Log(h.log, "scan failed", err)
		httperr.Errs(w, err)
		return
	}
	if err != nil {
		// 報告已完成，只有寫入 archive 失敗
		httperr.Log(h.log, "archive failed", err)
	}
	used := time.Since(start)

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, ScanResponse{RunID: id, UsedTime: used.Milliseconds(), Report: rep})
		return
	}
	render, ok := stats.RenderByName(format)
	if !ok {
		httperr.Errs(w, errs.NewWarn("unknown format: "+format))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if id != "" {
		w.Header().Set("X-Run-Id", id)
	}
	if err := render.Write(w, rep); err != nil {
		h.log.Error("render failed", slog.Any("err", err))
	}
}

// withinLimits 在配置記憶體之前擋下過大的分箱或合成事件數
func (h *AnalysisHandler) withinLimits(a *setting.Analysis) error {
	if h.maxBins > 0 {
		for _, n := range []int{a.NumBins, a.DistBins, a.Features.Bins} {
			if n > h.maxBins {
				return errs.Warnf("analysis %s: bins %d exceed server limit %d", a.Name, n, h.maxBins)
			}
		}
	}
	if h.maxEvts > 0 {
		total := 0
		for _, s := range a.Samples {
			if s.Generate == nil {
				continue
			}
			if s.Generate.Events > h.maxEvts-total {
				return errs.Warnf("analysis %s: generated events exceed server limit %d", a.Name, h.maxEvts)
			}
			total += s.Generate.Events
		}
	}
	return nil
}

// History 掃描歷史 /v1/history?analysis=&limit=
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	st := h.lab.Archive()
	if st == nil {
		httperr.Errs(w, errs.NewWarn("archive is not enabled"))
		return
	}
	limit := h.history
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 1000 {
			httperr.Errs(w, errs.NewWarn("limit must be between 1 and 1,000"))
			return
		}
		limit = n
	}
	recs, err := st.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("analysis")), limit)
	if err != nil {
		httperr.Log(h.log, "history failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Report 歷史中的單一報告 /v1/history/{id}
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	st := h.lab.Archive()
	if st == nil {
		httperr.Errs(w, errs.NewWarn("archive is not enabled"))
		return
	}
	rep, err := st.Report(r.Context(), netsvr.URLParam(r, "id"))
	if err != nil {
		if errs.Level(err) == errs.Warn {
			notFound(w, "run not found")
			return
		}
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, httperr.Body{Status: http.StatusNotFound, Error: msg})
}
