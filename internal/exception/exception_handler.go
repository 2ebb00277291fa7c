package exception

import (
	"net/http"
	"time"

	"go-timesheet/internal/shared/apperror"
	"go-timesheet/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmitExceptionRequest struct {
	UserID     uuid.UUID  `json:"user_id" binding:"required"`
	FactID     *uuid.UUID `json:"fact_id"`
	LetterID   *uuid.UUID `json:"letter_id"`
	Date       string     `json:"date" binding:"required,datetime=2006-01-02"`
	ReasonCode string     `json:"reason_code" binding:"required"`
}

type DecideExceptionRequest struct {
	Role     string `json:"role" binding:"required,oneof=manager hr"`
	Approved *bool  `json:"approved" binding:"required"`
	Note     string `json:"note"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date", err.Error())
		return
	}

	created, err := h.service.Submit(c.Request.Context(), SubmitRequest{
		UserID:     req.UserID,
		FactID:     req.FactID,
		LetterID:   req.LetterID,
		Date:       date,
		ReasonCode: req.ReasonCode,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created, nil)
}

func (h *Handler) Decide(c *gin.Context) {
	exceptionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid exception id", err.Error())
		return
	}

	var req DecideExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	approverID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor identity", nil)
		return
	}

	decided, err := h.service.Decide(c.Request.Context(), exceptionID, approverID, req.Role, *req.Approved, req.Note)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, decided, nil)
}
