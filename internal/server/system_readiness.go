package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/sitepnl/pkg/db"
)

type ReadinessState string

const (
	ReadinessStateReady    ReadinessState = "ready"
	ReadinessStateNotReady ReadinessState = "not_ready"
	ReadinessStateOptional ReadinessState = "optional"
)

type ReadinessIssue struct {
	ID       string            `json:"id"`
	Status   ReadinessState    `json:"status"`
	Evidence map[string]string `json:"evidence,omitempty"`
}

type ReadinessResponse struct {
	SystemState ReadinessState   `json:"system_state"`
	Version     string           `json:"version,omitempty"`
	Issues      []ReadinessIssue `json:"issues"`
}

const readinessTimeout = 2 * time.Second

func (s *Server) RegisterSystemRoutes() {
	s.engine.GET("/healthz", s.GetSystemReadiness)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// GetSystemReadiness reports whether the database answers. Redis is only
// used for rate limiting, so it never makes the service unready.
func (s *Server) GetSystemReadiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	issues := make([]ReadinessIssue, 0, 2)
	isReady := true

	if s.db == nil {
		isReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "database",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": "db not configured"},
		})
	} else if err := db.Ping(ctx, s.db); err != nil {
		isReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "database",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{ID: "database", Status: ReadinessStateReady})
	}

	switch {
	case s.redis == nil:
		issues = append(issues, ReadinessIssue{
			ID:       "redis",
			Status:   ReadinessStateOptional,
			Evidence: map[string]string{"error": "redis not configured"},
		})
	case s.redis.Ping(ctx).Err() != nil:
		issues = append(issues, ReadinessIssue{
			ID:       "redis",
			Status:   ReadinessStateOptional,
			Evidence: map[string]string{"error": "redis unreachable"},
		})
	default:
		issues = append(issues, ReadinessIssue{ID: "redis", Status: ReadinessStateReady})
	}

	resp := ReadinessResponse{
		SystemState: ReadinessStateReady,
		Version:     s.cfg.AppVersion,
		Issues:      issues,
	}
	if !isReady {
		resp.SystemState = ReadinessStateNotReady
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
