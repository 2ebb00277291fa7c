package payroll

import (
	"strconv"

	"go-timesheet/internal/user"
)

const fullDayHours = 8

// ruleInput is one employee's decision context for a single date.
type ruleInput struct {
	WorkingDay   bool
	Excluded     bool
	StatusCode   string
	Present      bool
	LateMinutes  int
	EarlyMinutes int
	HasException bool
	HasLetter    bool
	WorkedSecs   int
}

type cellOutcome struct {
	Code  string
	Hours float64
	Kind  string
}

type cellRule struct {
	name    string
	applies func(ruleInput) bool
	outcome func(ruleInput) cellOutcome
}

// cellRules is the layered decision policy, evaluated in order with first
// match winning. The order is the contract: exclusion beats status, status
// beats presence, exception approval beats the explanation-letter partial
// credit, and the final rule is the default denial.
var cellRules = []cellRule{
	{
		name:    "off_day",
		applies: func(in ruleInput) bool { return !in.WorkingDay },
		outcome: func(ruleInput) cellOutcome { return cellOutcome{Code: "", Hours: 0, Kind: KindOff} },
	},
	{
		name:    "exclusion_list",
		applies: func(in ruleInput) bool { return in.Excluded },
		outcome: func(ruleInput) cellOutcome { return cellOutcome{Code: "8", Hours: fullDayHours, Kind: KindWork} },
	},
	{
		name:    "inactive_status",
		applies: func(in ruleInput) bool { return in.StatusCode != user.StatusActive },
		outcome: statusOutcome,
	},
	{
		name: "punctual_presence",
		applies: func(in ruleInput) bool {
			return in.Present && in.LateMinutes == 0 && in.EarlyMinutes == 0
		},
		outcome: func(ruleInput) cellOutcome { return cellOutcome{Code: "8", Hours: fullDayHours, Kind: KindWork} },
	},
	{
		name:    "approved_exception",
		applies: func(in ruleInput) bool { return in.HasException },
		outcome: func(ruleInput) cellOutcome { return cellOutcome{Code: "8", Hours: fullDayHours, Kind: KindWork} },
	},
	{
		name:    "approved_letter",
		applies: func(in ruleInput) bool { return in.HasLetter },
		outcome: letterOutcome,
	},
	{
		name:    "default_absent",
		applies: func(ruleInput) bool { return true },
		outcome: func(ruleInput) cellOutcome { return cellOutcome{Code: "0", Hours: 0, Kind: KindAbsent} },
	},
}

// decideCell runs the policy and returns the matched rule name along with
// the outcome.
func decideCell(in ruleInput) (string, cellOutcome) {
	for _, rule := range cellRules {
		if rule.applies(in) {
			return rule.name, rule.outcome(in)
		}
	}
	// Unreachable: default_absent always applies.
	return "default_absent", cellOutcome{Code: "0", Hours: 0, Kind: KindAbsent}
}

// statusOutcome maps a non-active employment status to its fixed cell. Any
// code outside the known set is displayed raw with zero hours.
func statusOutcome(in ruleInput) cellOutcome {
	switch in.StatusCode {
	case user.StatusTrip:
		return cellOutcome{Code: "8", Hours: fullDayHours, Kind: KindTrip}
	case user.StatusSick:
		return cellOutcome{Code: "0", Hours: 0, Kind: KindSick}
	case user.StatusVacation:
		return cellOutcome{Code: "0", Hours: 0, Kind: KindVacation}
	default:
		return cellOutcome{Code: in.StatusCode, Hours: 0, Kind: KindAbsent}
	}
}

// letterOutcome grants partial credit from actual worked time: nearest whole
// hour, half up, capped at a full day.
func letterOutcome(in ruleInput) cellOutcome {
	h := nearestHour(in.WorkedSecs)
	if h >= fullDayHours {
		return cellOutcome{Code: "8", Hours: fullDayHours, Kind: KindWork}
	}
	kind := KindWork
	if h == 0 {
		kind = KindAbsent
	}
	return cellOutcome{Code: strconv.Itoa(h), Hours: float64(h), Kind: kind}
}

// nearestHour rounds worked seconds to the nearest whole hour, half up:
// 16200s (4.5h) rounds to 5, 1800s (0.5h) rounds to 1.
func nearestHour(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 1800) / 3600
}
