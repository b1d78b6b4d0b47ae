package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// Recover 將 handler panic 轉成 500，單一分析請求不會拖垮整個 server
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
