// Command httpserver runs a small demo service on top of the engine: a
// handful of routes exercising captures, status codes and HTML and
// plain-text bodies, wired to structured logging and Prometheus metrics the way a
// real deployment would configure them.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"httpd/internal/httplog"
	"httpd/internal/httpmetrics"
	"httpd/internal/httpparse"
	"httpd/internal/request"
	"httpd/internal/response"
	"httpd/internal/server"
)

func envOr(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

func main() {
	if err := httplog.Init(httplog.Options{Level: envString("HTTPD_LOG_LEVEL", "info")}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logging:", err)
		os.Exit(1)
	}
	log := httplog.Get()
	defer httplog.Sync()

	metricsAddr := envString("HTTPD_METRICS_ADDR", "127.0.0.1:9090")
	registry := prometheus.NewRegistry()
	collectors := httpmetrics.NewCollectors(registry)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Warn("metrics listener stopped", zap.Error(err))
		}
	}()

	addr := envString("HTTPD_ADDR", ":42069")
	s, err := server.New(addr,
		server.WithBufferCap(envOr("HTTPD_BUFFER_CAP", 4096)),
		server.WithMaxURLLen(envOr("HTTPD_MAX_URL_LEN", 8192)),
		server.WithBacklog(envOr("HTTPD_BACKLOG", 128)),
		server.WithMetrics(collectors),
	)
	if err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}

	s.Handle("/yourproblem", func(resp *response.Writer, req *request.Request) {
		resp.Headers.Set("content-type", "text/html")
		body := []byte(`<html><body><h1>Bad Request</h1><p>Your request honestly kinda sucked.</p></body></html>`)
		_ = resp.Send(httpparse.StatusBadRequest, len(body))
		_, _ = resp.WriteBodyChunk(body)
	})

	s.Handle("/myproblem", func(resp *response.Writer, req *request.Request) {
		resp.Headers.Set("content-type", "text/html")
		body := []byte(`<html><body><h1>Internal Server Error</h1><p>Okay, you know what? This one is on me.</p></body></html>`)
		_ = resp.Send(httpparse.StatusInternalServerError, len(body))
		_, _ = resp.WriteBodyChunk(body)
	})

	s.Handle("/greet/*", func(resp *response.Writer, req *request.Request) {
		names := req.PathVar(0)
		name := "friend"
		if len(names) > 0 {
			name = names[0]
		}
		resp.Headers.Set("content-type", "text/plain")
		body := []byte(fmt.Sprintf("hello, %s!\n", name))
		_ = resp.Send(httpparse.StatusOK, len(body))
		_, _ = resp.WriteBodyChunk(body)
	})

	s.Handle("/*", func(resp *response.Writer, req *request.Request) {
		resp.Headers.Set("content-type", "text/html")
		body := []byte(`<html><body><h1>Success!</h1><p>Your request was an absolute banger.</p></body></html>`)
		_ = resp.Send(httpparse.StatusOK, len(body))
		_, _ = resp.WriteBodyChunk(body)
	})

	log.Info("server listening", zap.String("addr", s.Addr()), zap.String("metrics_addr", metricsAddr))
	if err := s.Run(); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
	log.Info("server gracefully stopped")
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
