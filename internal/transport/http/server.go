// Package httptransport builds the http.Server that fronts the care API.
package httptransport

import (
	"net/http"
	"time"
)

// ServerConfig holds the listener address and connection timeouts for the
// care API server.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer returns an *http.Server serving handler with cfg's timeouts
// applied. Shutdown is left to the caller.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
