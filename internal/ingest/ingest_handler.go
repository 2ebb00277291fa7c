package ingest

import (
	"context"
	"net/http"

	"go-timesheet/internal/shared/apperror"
	"go-timesheet/internal/shared/contextutil"
	"go-timesheet/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	orchestrator Orchestrator
}

func NewHandler(orchestrator Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Run dispatches one cycle in the background and returns immediately. The
// cursor row lock serializes this with the scheduled worker, so a manual
// trigger during a running cycle just queues behind it. This endpoint
// exists for catch-up after a known outage.
func (h *Handler) Run(c *gin.Context) {
	logger := contextutil.GetLogger(c.Request.Context(), zap.L().Named("ingest.handler"))
	go func() {
		result, err := h.orchestrator.RunCycle(context.Background())
		if err != nil {
			logger.Error("manual ingest cycle failed", zap.Error(err))
			return
		}
		logger.Info("manual ingest cycle complete",
			zap.Int("backfilled_days", result.BackfilledDays),
			zap.Bool("outage", result.Outage),
		)
	}()
	response.Success(c, http.StatusAccepted, gin.H{"dispatched": true}, nil)
}

func (h *Handler) Status(c *gin.Context) {
	cursor, err := h.orchestrator.Status(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"source":            cursor.Source,
		"last_success_date": cursor.LastSuccessDate,
		"status":            cursor.Status,
		"outage_started_at": cursor.OutageStartedAt,
		"reason":            cursor.Reason,
		"last_run_at":       cursor.LastRunAt,
	}, nil)
}
