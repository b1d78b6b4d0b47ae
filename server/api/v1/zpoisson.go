package v1

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/zintix-labs/cutlab/errs"
	"github.com/zintix-labs/cutlab/server/httperr"
	"github.com/zintix-labs/cutlab/signif"
)

// ZPoissonRequest
type ZPoissonRequest struct {
	S    float64 `json:"s"`
	B    float64 `json:"b"`
	Stat float64 `json:"stat"`
	Syst float64 `json:"syst"`
}

// ZPoissonResponse
type ZPoissonResponse struct {
	ZPoissonRequest
	Z       float64 `json:"z"`
	SimpleZ float64 `json:"simple_z"`
}

// ZPoisson 計算單點顯著性，GET 走 query、POST 走 json
func ZPoisson(w http.ResponseWriter, r *http.Request) {
	req := new(ZPoissonRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		for _, p := range []struct {
			key      string
			dst      *float64
			required bool
		}{
			{"s", &req.S, true},
			{"b", &req.B, true},
			{"stat", &req.Stat, false},
			{"syst", &req.Syst, false},
		} {
			v := q.Get(p.key)
			if v == "" {
				if p.required {
					httperr.Errs(w, errs.NewWarn(p.key+" is required"))
					return
				}
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn(p.key+" must be a number"))
				return
			}
			*p.dst = f
		}
	case http.MethodPost:
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json: "+err.Error()))
			return
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 業務檢驗
	for _, v := range []float64{req.S, req.B, req.Stat, req.Syst} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			httperr.Errs(w, errs.NewWarn("s, b, stat, syst must be finite and >= 0"))
			return
		}
	}
	resp := ZPoissonResponse{
		ZPoissonRequest: *req,
		Z:               signif.ZPoisson(req.S, req.B, req.Stat, req.Syst),
		SimpleZ:         signif.SimpleZ(req.S, req.B),
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
