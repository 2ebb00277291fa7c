package exclusion

import (
	"net/http"
	"time"

	"go-timesheet/internal/shared/apperror"
	"go-timesheet/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AddExclusionRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	From   string    `json:"from" binding:"required,datetime=2006-01-02"`
	Reason string    `json:"reason" binding:"required"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Add(c *gin.Context) {
	var req AddExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", err.Error())
		return
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date", err.Error())
		return
	}

	record, err := h.service.Add(c.Request.Context(), req.UserID, from, req.Reason)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusCreated, record, nil)
}
