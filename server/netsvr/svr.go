package netsvr

import (
	"net/http"

	"github.com/zintix-labs/cutlab/server/app"
)

// NetSvr 路由 + 啟停。只交給最外層組裝使用，同時是 app.Component。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 純路由行為；handler 與子模組只拿得到這一層，碰不到 Run/Shutdown。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// 群組路由
	Group(path string, fn func(NetRouter))
}
