package payroll

import (
	"net/http"
	"time"

	"go-timesheet/internal/shared/apperror"
	"go-timesheet/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	generator Generator
	ledger    Ledger
}

func NewHandler(generator Generator, ledger Ledger) *Handler {
	return &Handler{generator: generator, ledger: ledger}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Generate recomputes every scope's cells for one date.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date", err.Error())
		return
	}

	result, err := h.generator.GenerateDate(c.Request.Context(), date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.ledger.ListPeriods(c.Request.Context(), companyID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetMatrix(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid period id", err.Error())
		return
	}

	resp, err := h.ledger.Matrix(c.Request.Context(), periodID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SendToReview(c *gin.Context) {
	var req SendToReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	if err := h.ledger.SendToReview(c.Request.Context(), req.PeriodIDs); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"periods": len(req.PeriodIDs)}, nil)
}

func (h *Handler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	actorID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor identity", nil)
		return
	}

	result, err := h.ledger.Decide(c.Request.Context(), DecideCommand{
		PeriodIDs: req.PeriodIDs,
		UserID:    actorID,
		Window:    req.Window,
		Approved:  *req.Approved,
		Note:      req.Note,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result, nil)
}
