package http

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/apiaudit/internal/infrastructure/ports"
	"github.com/sophialabs/apiaudit/internal/infrastructure/usecases"
)

// ProxyServer runs the audit engine in front of a black-box service: all
// traffic is reverse-proxied to the target and recorded, while /__audit
// control routes drive snapshots and report generation. Control traffic is
// never recorded.
type ProxyServer struct {
	auditor  *usecases.Auditor
	recorder *Recorder
	logger   ports.Logger
	router   *chi.Mux
}

// NewProxyServer creates a proxy server recording traffic to target.
func NewProxyServer(target *url.URL, auditor *usecases.Auditor, recorder *Recorder, logger ports.Logger) *ProxyServer {
	s := &ProxyServer{
		auditor:  auditor,
		recorder: recorder,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/__audit", func(r chi.Router) {
		r.Post("/traffic/{suite}", s.handleWriteTraffic)
		r.Post("/report", s.handleReport)
		r.Get("/status", s.handleStatus)
	})

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		logger.Error("proxy error", "method", req.Method, "path", req.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}
	r.Handle("/*", recorder.Middleware(proxy))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *ProxyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *ProxyServer) handleWriteTraffic(w http.ResponseWriter, r *http.Request) {
	suite := chi.URLParam(r, "suite")
	count := s.auditor.WriteTraffic(r.Context(), suite)
	writeJSON(w, http.StatusOK, map[string]any{"suite": suite, "records": count})
}

func (s *ProxyServer) handleReport(w http.ResponseWriter, r *http.Request) {
	if err := s.auditor.Teardown(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": s.auditor.State().String()})
}

func (s *ProxyServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   s.auditor.State().String(),
		"records": s.recorder.Log().Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
