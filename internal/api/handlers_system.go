package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/pipeline"
)

const (
	defaultDecisionLimit = 50
	defaultLogLimit      = 200
)

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	Version     string                 `json:"version"`
	StartTime   string                 `json:"startTime"`
	Uptime      string                 `json:"uptime"`
	DryRun      bool                   `json:"dryRun"`
	AutoApprove bool                   `json:"autoApprove"`
	Categories  map[string]int         `json:"categories"`
	Dedup       bool                   `json:"dedup"`
	Threads     int                    `json:"threads"`
	Runs        map[pipeline.State]int `json:"runs"`
	Healthy     *bool                  `json:"healthy,omitempty"`
}

// PreviewRequest is the body of POST /api/v1/preview.
type PreviewRequest struct {
	MediaType string `json:"mediaType"`
	TMDbID    int    `json:"tmdbId"`
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	resp := StatusResponse{
		Version:     config.Version,
		StartTime:   s.startedAt.Format(time.RFC3339),
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		DryRun:      s.cfg.DryRun,
		AutoApprove: s.cfg.AutoApprove,
		Categories: map[string]int{
			media.TypeTV.String():    countCategories(s.cfg, media.TypeTV),
			media.TypeMovie.String(): countCategories(s.cfg, media.TypeMovie),
		},
		Dedup:   s.cfg.Dedup.Enabled,
		Threads: s.threads,
		Runs:    s.engine.Stats(),
	}
	if s.opts.Health != nil {
		healthy := !s.opts.Health.GetSummary().HasIssues
		resp.Healthy = &healthy
	}
	return c.JSON(http.StatusOK, resp)
}

func countCategories(cfg *config.Config, mt media.Type) int {
	set := cfg.Categories(mt)
	if set == nil {
		return 0
	}
	return len(set.Definitions)
}

// preview runs the decision engine for a title without mutating anything.
// POST /api/v1/preview
func (s *Server) preview(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	mt, err := media.ParseType(req.MediaType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := s.engine.Preview(c.Request().Context(), mt, req.TMDbID)
	if err != nil {
		return echo.NewHTTPError(statusForError(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// listDecisions returns recent pipeline results, newest first.
// GET /api/v1/decisions?limit=50
func (s *Server) listDecisions(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultDecisionLimit)
	if err != nil {
		return err
	}
	results := s.engine.Decisions(limit)
	if results == nil {
		results = []pipeline.Result{}
	}
	return c.JSON(http.StatusOK, results)
}

// getLogs returns recent log entries from the ring buffer.
// GET /api/v1/logs?limit=200&level=info
func (s *Server) getLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultLogLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.opts.Logs.Recent(limit, c.QueryParam("level")))
}

// testNotifications sends a test message through every notifier.
// POST /api/v1/notifications/test
func (s *Server) testNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, s.opts.Notifications.Test(c.Request().Context()))
}

// getHealth returns the tracked upstream and notifier health.
// GET /api/v1/health
func (s *Server) getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, s.opts.Health.GetSummary())
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
