package api

import (
	"net/http"

	"go.uber.org/zap"
)

type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(handler *Handler, logger *zap.Logger) *Router {
	mux := http.NewServeMux()
	handler.Register(mux)

	return &Router{mux: mux, logger: logger}
}

func (r *Router) Handler() http.Handler {
	return withRequestLog(r.mux, r.logger)
}
