package index

import (
	"encoding/json"
	"net/http"
)

// Endpoint 一條公開路由
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Desc   string `json:"desc"`
}

// Endpoints 首頁列出的路由，與 api.RegisterRoutes 一致
var Endpoints = []Endpoint{
	{http.MethodGet, "/v1/zpoisson", "significance for s, b, stat, syst (query or POST json)"},
	{http.MethodPost, "/v1/zpoisson", ""},
	{http.MethodGet, "/v1/analyses", "registered analyses"},
	{http.MethodPost, "/v1/analyses/{name}/run", "run a registered analysis"},
	{http.MethodPost, "/v1/scan", "run an analysis posted as json"},
	{http.MethodGet, "/v1/history", "archived runs, ?analysis=&limit="},
	{http.MethodGet, "/v1/history/{id}", "archived report"},
}

func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"service":   "cutlab",
		"endpoints": Endpoints,
	})
}
