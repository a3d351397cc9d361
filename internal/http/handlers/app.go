package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"visualaudit/internal/audit"
)

// App bundles the handler dependencies.
type App struct {
	Audits       *audit.Service
	AuditTimeout time.Duration
	Logger       zerolog.Logger
}

func NewApp(audits *audit.Service, auditTimeout time.Duration, logger zerolog.Logger) *App {
	return &App{Audits: audits, AuditTimeout: auditTimeout, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
