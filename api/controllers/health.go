package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// Pinger checks one downstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes. Readiness fans
// out to each registered dependency with a short timeout.
type HealthController struct {
	deps map[string]Pinger
	logg *logger.Logger
}

func NewHealthController(logg *logger.Logger, deps map[string]Pinger) *HealthController {
	return &HealthController{deps: deps, logg: logg}
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]any{"status": "ok"})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	for name, dep := range c.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			healthy = false
			checks[name] = err.Error()
			lctx := c.logg.WithField(ctx, "dependency", name)
			c.logg.Warn(lctx, "readiness check failed")
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	responses.WriteSuccessStatus(w, status, map[string]any{
		"status": state,
		"checks": checks,
	})
}
