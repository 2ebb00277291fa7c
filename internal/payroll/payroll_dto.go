package payroll

import (
	"github.com/google/uuid"
)

type GenerateRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

type SendToReviewRequest struct {
	PeriodIDs []uuid.UUID `json:"period_ids" binding:"required,min=1"`
}

type DecideRequest struct {
	PeriodIDs []uuid.UUID `json:"period_ids" binding:"required,min=1"`
	Window    string      `json:"window" binding:"required,oneof=mid final"`
	Approved  *bool       `json:"approved" binding:"required"`
	Note      string      `json:"note"`
}

type PeriodResponse struct {
	ID            uuid.UUID  `json:"id"`
	CompanyID     uuid.UUID  `json:"company_id"`
	DepartmentID  *uuid.UUID `json:"department_id,omitempty"`
	HeadOffice    bool       `json:"head_office"`
	PeriodType    string     `json:"period_type"`
	Year          int        `json:"year"`
	Month         int        `json:"month"`
	MidPayDate    string     `json:"mid_pay_date"`
	FinalPayDate  string     `json:"final_pay_date"`
	MidLocked     bool       `json:"mid_locked"`
	FinalLocked   bool       `json:"final_locked"`
	Status        string     `json:"status"`
	EmployeeCount int        `json:"employee_count"`
}

type CellResponse struct {
	Date  string  `json:"date"`
	Code  string  `json:"code"`
	Kind  string  `json:"kind"`
	Hours float64 `json:"hours"`
}

type MatrixRow struct {
	UserID       uuid.UUID      `json:"user_id"`
	FullName     string         `json:"full_name"`
	TotalHours   float64        `json:"total_hours"`
	MidHours     float64        `json:"mid_hours"`
	FinalHours   float64        `json:"final_hours"`
	AbsentDays   int            `json:"absent_days"`
	VacationDays int            `json:"vacation_days"`
	SickDays     int            `json:"sick_days"`
	TripDays     int            `json:"trip_days"`
	Cells        []CellResponse `json:"cells"`
}

type MatrixResponse struct {
	Period PeriodResponse `json:"period"`
	Rows   []MatrixRow    `json:"rows"`
}

const dateLayout = "2006-01-02"

func mapToPeriodResponse(p *Period) PeriodResponse {
	return PeriodResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		DepartmentID:  p.DepartmentID,
		HeadOffice:    p.HeadOffice,
		PeriodType:    p.PeriodType,
		Year:          p.Year,
		Month:         p.Month,
		MidPayDate:    p.MidPayDate.Format(dateLayout),
		FinalPayDate:  p.FinalPayDate.Format(dateLayout),
		MidLocked:     p.MidLocked,
		FinalLocked:   p.FinalLocked,
		Status:        p.Status,
		EmployeeCount: p.EmployeeCount,
	}
}

func mapToMatrixResponse(period *Period, rows []Row, cells []Cell, names map[uuid.UUID]string) *MatrixResponse {
	cellsByRow := make(map[uuid.UUID][]CellResponse, len(rows))
	midHours := make(map[uuid.UUID]float64, len(rows))
	finalHours := make(map[uuid.UUID]float64, len(rows))
	for _, c := range cells {
		cellsByRow[c.RowID] = append(cellsByRow[c.RowID], CellResponse{
			Date:  c.Date.Format(dateLayout),
			Code:  c.Code,
			Kind:  c.Kind,
			Hours: c.Hours,
		})
		if period.WindowFor(c.Date) == WindowMid {
			midHours[c.RowID] += c.Hours
		} else {
			finalHours[c.RowID] += c.Hours
		}
	}

	out := &MatrixResponse{
		Period: mapToPeriodResponse(period),
		Rows:   make([]MatrixRow, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, MatrixRow{
			UserID:       r.UserID,
			FullName:     names[r.UserID],
			TotalHours:   r.TotalHours,
			MidHours:     midHours[r.ID],
			FinalHours:   finalHours[r.ID],
			AbsentDays:   r.AbsentDays,
			VacationDays: r.VacationDays,
			SickDays:     r.SickDays,
			TripDays:     r.TripDays,
			Cells:        cellsByRow[r.ID],
		})
	}
	return out
}
