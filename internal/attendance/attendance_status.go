package attendance

import (
	"time"

	"go-timesheet/internal/biometric"
	"go-timesheet/internal/user"
)

// deriveInput is everything the reconciler needs to turn one vendor report
// record into a normalized daily fact.
type deriveInput struct {
	Record     biometric.ReportRecord
	User       *user.User
	Day        time.Time
	WorkingDay bool
	// SecondsUnit: vendor durations are seconds rather than minutes.
	SecondsUnit bool
	Now         time.Time
}

// deriveFact applies the daily reconciliation rules: re-derive lateness and
// early leave when the vendor reports zero but the timestamps disagree,
// prefer the timestamp delta for worked time, and force excused statuses for
// users on a pre-approved leave category.
func deriveFact(in deriveInput) *DailyFact {
	rec := in.Record

	planBegin := biometric.ParseTime(rec.PlanBegin)
	planEnd := biometric.ParseTime(rec.PlanEnd)
	actualBegin := biometric.ParseTime(rec.ActualBegin)
	actualEnd := biometric.ParseTime(rec.ActualEnd)

	lateMin := durationToMinutes(rec.LateDuration, in.SecondsUnit)
	if lateMin == 0 && actualBegin != nil && planBegin != nil && actualBegin.After(*planBegin) {
		lateMin = int(actualBegin.Sub(*planBegin).Minutes())
	}

	earlyMin := durationToMinutes(rec.EarlyDuration, in.SecondsUnit)
	if earlyMin == 0 && actualEnd != nil && planEnd != nil && actualEnd.Before(*planEnd) {
		earlyMin = int(planEnd.Sub(*actualEnd).Minutes())
	}

	workedSeconds := 0
	switch {
	case actualBegin != nil && actualEnd != nil && actualEnd.After(*actualBegin):
		workedSeconds = int(actualEnd.Sub(*actualBegin).Seconds())
	case rec.NormalDuration > 0:
		workedSeconds = durationToSeconds(rec.NormalDuration, in.SecondsUnit)
	case rec.AllDuration > 0:
		workedSeconds = durationToSeconds(rec.AllDuration, in.SecondsUnit)
	case actualBegin != nil:
		// Still clocked in: provisional estimate, superseded once the
		// checkout event arrives on a later pass for the same date.
		if in.Now.After(*actualBegin) {
			workedSeconds = int(in.Now.Sub(*actualBegin).Seconds())
		}
	}

	absenceMin := durationToMinutes(rec.AbsenceDuration, in.SecondsUnit)
	present := workedSeconds > 0 || actualBegin != nil || actualEnd != nil
	absent := !present && (in.WorkingDay || absenceMin > 0)

	checkIn := deriveCheckStatus(actualBegin, lateMin, absent, CheckLate)
	checkOut := deriveCheckStatus(actualEnd, earlyMin, absent, CheckEarly)

	if user.IsReasonableAbsence(in.User.StatusCode) {
		checkIn = CheckExcused
		checkOut = CheckExcused
	}

	return &DailyFact{
		UserID:         in.User.ID,
		Date:           in.Day,
		CompanyID:      in.User.CompanyID,
		DepartmentID:   in.User.DepartmentID,
		HeadOffice:     in.User.HeadOffice,
		PersonCode:     rec.PersonCode,
		PlanBegin:      planBegin,
		PlanEnd:        planEnd,
		FirstIn:        actualBegin,
		LastOut:        actualEnd,
		WorkedSeconds:  workedSeconds,
		LateMinutes:    lateMin,
		EarlyMinutes:   earlyMin,
		Present:        present,
		Absent:         absent,
		CheckInStatus:  checkIn,
		CheckOutStatus: checkOut,
		UserStatusCode: in.User.StatusCode,
	}
}

// deriveCheckStatus resolves one boundary. Tie-break order: a recorded
// timestamp always beats the absent/not-checked fallback, and a nonzero
// deficiency beats on-time even when the vendor flagged the punch as clean.
func deriveCheckStatus(ts *time.Time, deficiencyMin int, absent bool, deficiencyStatus string) string {
	if ts != nil {
		if deficiencyMin > 0 {
			return deficiencyStatus
		}
		return CheckOnTime
	}
	if absent {
		return CheckAbsent
	}
	return CheckNotChecked
}

func durationToMinutes(v float64, secondsUnit bool) int {
	if v <= 0 {
		return 0
	}
	if secondsUnit {
		return int(v / 60)
	}
	return int(v)
}

func durationToSeconds(v float64, secondsUnit bool) int {
	if v <= 0 {
		return 0
	}
	if secondsUnit {
		return int(v)
	}
	return int(v * 60)
}
