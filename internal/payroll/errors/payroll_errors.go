package errors

import (
	"fmt"
	"net/http"

	"go-timesheet/internal/shared/apperror"

	"github.com/google/uuid"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"Payroll period not found",
		http.StatusNotFound,
	)

	ErrInvalidWindow = apperror.New(
		apperror.CodeInvalidInput,
		"Window must be mid or final",
		http.StatusBadRequest,
	)

	ErrNoPayDateAnchor = apperror.New(
		apperror.CodeInternalError,
		"No working day available for period pay-date anchor",
		http.StatusInternalServerError,
	)
)

// InvalidPeriodState rejects a whole ledger batch before any mutation,
// listing the offending period ids so operators can retry with just the
// valid subset.
func InvalidPeriodState(reason string, periodIDs []uuid.UUID) *apperror.AppError {
	ids := make([]string, 0, len(periodIDs))
	for _, id := range periodIDs {
		ids = append(ids, id.String())
	}
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("Batch rejected: %s", reason),
		http.StatusConflict,
	).WithDetails(map[string]any{
		"reason":     reason,
		"period_ids": ids,
	})
}
