package api_test

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/cutlab"
	"github.com/zintix-labs/cutlab/archive"
	"github.com/zintix-labs/cutlab/server/api"
	v1 "github.com/zintix-labs/cutlab/server/api/v1"
	"github.com/zintix-labs/cutlab/server/logger"
	"github.com/zintix-labs/cutlab/server/netsvr"
	"github.com/zintix-labs/cutlab/server/svrcfg"
)

const smallYAML = `
name: small
numbins: 10
background_floor: 1
scale_factors: {sig: 1, bkg: 1}
samples:
  - {label: sig, class: signal, scores: [0.95, 0.85, 0.75, 0.65, 0.55]}
  - {label: bkg, class: background, scores: [0.05, 0.15, 0.25, 0.35, 0.45, 0.55, 0.65]}
`

const strictYAML = `
name: strict
numbins: 10
background_floor: 100
scale_factors: {sig: 1, bkg: 1}
samples:
  - {label: sig, class: signal, scores: [0.9]}
  - {label: bkg, class: background, scores: [0.1]}
`

func newHandler(t *testing.T, withArchive bool) http.Handler {
	t.Helper()
	lab, err := cutlab.NewAuto(nil, cutlab.Configs(fstest.MapFS{
		"small.yaml":  {Data: []byte(smallYAML)},
		"strict.yaml": {Data: []byte(strictYAML)},
	}))
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	if withArchive {
		st, err := archive.Open(archive.Memory)
		if err != nil {
			t.Fatalf("open archive: %v", err)
		}
		t.Cleanup(func() { _ = st.Close() })
		lab.SetArchive(st)
	}
	cfg := &svrcfg.SvrCfg{Log: logger.NewWriterLogger(io.Discard, logger.ModeDev), Lab: lab}
	if err := cfg.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
	svr := netsvr.NewChiServerDefault()
	if err := api.RegisterRoutes(svr, cfg); err != nil {
		t.Fatalf("register: %v", err)
	}
	return svr.Handler()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	h := newHandler(t, false)
	rec := do(h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/v1/scan") {
		t.Fatalf("index: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestZPoisson(t *testing.T) {
	h := newHandler(t, false)

	rec := do(h, http.MethodGet, "/v1/zpoisson?s=4&b=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp v1.ZPoissonResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := math.Sqrt(2 * (5*math.Log(5) - 4))
	if math.Abs(resp.Z-want) > 1e-9 {
		t.Fatalf("z=%v want %v", resp.Z, want)
	}

	rec = do(h, http.MethodPost, "/v1/zpoisson", `{"s":10,"b":100,"syst":0.1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("post status=%d", rec.Code)
	}

	for _, target := range []string{"/v1/zpoisson?b=1", "/v1/zpoisson?s=x&b=1", "/v1/zpoisson?s=-1&b=1"} {
		if rec := do(h, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", target, rec.Code)
		}
	}
}

func TestAnalysesAndRun(t *testing.T) {
	h := newHandler(t, true)

	rec := do(h, http.MethodGet, "/v1/analyses", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"small"`) {
		t.Fatalf("analyses: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(h, http.MethodPost, "/v1/analyses/small/run", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("run: %d %s", rec.Code, rec.Body.String())
	}
	var resp v1.ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID == "" {
		t.Fatalf("run id missing with archive enabled")
	}
	sm := resp.Report.Summary
	if math.Abs(sm.Threshold-0.6) > 1e-9 || sm.Signal != 4 || sm.Background != 1 {
		t.Fatalf("unexpected cut: %+v", sm)
	}

	if rec := do(h, http.MethodPost, "/v1/analyses/strict/run", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("strict: status=%d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/v1/analyses/nope/run", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown: status=%d", rec.Code)
	}

	rec = do(h, http.MethodGet, "/v1/history?analysis=small", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), resp.RunID) {
		t.Fatalf("history: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(h, http.MethodGet, "/v1/history/"+resp.RunID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"small"`) {
		t.Fatalf("report: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(h, http.MethodGet, "/v1/history/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing report: status=%d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/v1/history?limit=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: status=%d", rec.Code)
	}
}

func TestScan(t *testing.T) {
	h := newHandler(t, false)
	body := `{
		"name": "posted",
		"numbins": 10,
		"background_floor": 1,
		"scale_factors": {"sig": 2, "bkg": 1},
		"samples": [
			{"label": "sig", "class": "signal", "scores": [0.95, 0.85]},
			{"label": "bkg", "class": "background", "scores": [0.15, 0.85, 0.95]}
		]
	}`
	rec := do(h, http.MethodPost, "/v1/scan", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("scan: %d %s", rec.Code, rec.Body.String())
	}
	var resp v1.ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID != "" {
		t.Fatalf("no archive, run id should be empty")
	}
	if resp.Report.Summary.Signal != 4 {
		t.Fatalf("scale factor not applied: %+v", resp.Report.Summary)
	}

	rec = do(h, http.MethodPost, "/v1/scan?format=table", body)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "posted") {
		t.Fatalf("table: %d %s", rec.Code, rec.Body.String())
	}

	bad := []string{
		`{"name": "x", "bogus": 1}`,
		`{"name": "x", "numbins": -1, "samples": []}`,
		`not json`,
	}
	for _, b := range bad {
		if rec := do(h, http.MethodPost, "/v1/scan", b); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", b, rec.Code)
		}
	}
}

func TestScanLimits(t *testing.T) {
	h := newHandler(t, false)
	over := []string{
		`{"name": "wide", "numbins": 100000000, "background_floor": 1,
			"samples": [{"label": "s", "class": "signal", "scores": [0.9]},
				{"label": "b", "class": "background", "scores": [0.1]}]}`,
		`{"name": "huge", "background_floor": 1,
			"samples": [{"label": "s", "class": "signal", "generate": {"events": 4000000, "alpha": 5, "beta": 2, "seed": 1}},
				{"label": "b", "class": "background", "generate": {"events": 4000000, "alpha": 2, "beta": 5, "seed": 2}}]}`,
	}
	for _, b := range over {
		rec := do(h, http.MethodPost, "/v1/scan", b)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "server limit") {
			t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
		}
	}
}

func TestHistoryDisabled(t *testing.T) {
	h := newHandler(t, false)
	if rec := do(h, http.MethodGet, "/v1/history", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestCompressedResponse(t *testing.T) {
	h := newHandler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("encoding=%q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !strings.Contains(string(raw), `"small"`) {
		t.Fatalf("body %s", raw)
	}
}
