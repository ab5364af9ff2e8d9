package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/overfiltrr/overfiltrr/internal/pipeline"
)

// maxWebhookBody caps the accepted payload size.
const maxWebhookBody = 1 << 20

type errorResponse struct {
	Error string         `json:"error"`
	State pipeline.State `json:"state,omitempty"`
	RunID string         `json:"runId,omitempty"`
}

// handleWebhook runs one Overseerr delivery through the pipeline.
// POST /webhook
//
// At most server.threads runs execute at once; further deliveries wait for
// a slot. A run is detached from the client connection once read.
func (s *Server) handleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) > maxWebhookBody {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "payload too large")
	}

	ctx := context.WithoutCancel(c.Request().Context())
	if err := s.runs.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no worker available")
	}
	defer s.runs.Release(1)

	res, err := s.engine.Process(ctx, pipeline.Event{
		Token:      tokenFromRequest(c),
		Body:       body,
		ReceivedAt: time.Now(),
	})

	if recorder := s.tokenRecorder(); recorder != nil {
		if errors.Is(err, pipeline.ErrUnauthorized) {
			recorder.RecordFailure(c.RealIP())
		} else {
			recorder.RecordSuccess(c.RealIP())
		}
	}

	if err != nil {
		resp := errorResponse{Error: publicError(err)}
		if res != nil {
			resp.State = res.State
			resp.RunID = res.ID
		}
		return c.JSON(statusForError(err), resp)
	}

	switch res.State {
	case pipeline.StateIgnored, pipeline.StateDuplicate:
		return c.JSON(http.StatusOK, res)
	default:
		return c.JSON(http.StatusAccepted, res)
	}
}

// statusForError maps pipeline errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, pipeline.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicError(err error) string {
	if errors.Is(err, pipeline.ErrUnauthorized) {
		return "unauthorized"
	}
	return err.Error()
}
