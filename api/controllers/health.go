package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/prylogi/logi-backend/api/responses"
	pkgerrors "github.com/prylogi/logi-backend/pkg/errors"
	"github.com/prylogi/logi-backend/pkg/logger"
)

// Pinger is anything that can report dependency liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController exposes liveness and readiness probes.
type HealthController struct {
	logg *logger.Logger
	deps map[string]Pinger
}

func NewHealthController(logg *logger.Logger, deps map[string]Pinger) *HealthController {
	return &HealthController{logg: logg, deps: deps}
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	statuses := map[string]string{}
	healthy := true
	for name, dep := range c.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			healthy = false
			statuses[name] = "unavailable"
			if c.logg != nil {
				c.logg.Error(c.logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
			}
			continue
		}
		statuses[name] = "ok"
	}

	if !healthy {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").
			WithDetails(statuses))
		return
	}
	responses.WriteSuccess(w, statuses)
}
