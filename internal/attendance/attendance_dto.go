package attendance

import "time"

// IngestRequest selects one ingestion window: a begin/end time range for a
// set of organizational scope codes, or a single person code.
type IngestRequest struct {
	Begin      time.Time
	End        time.Time
	ScopeCodes []string
	PersonCode string
}

// LateEmployee is one entry of the lateness side channel handed to the
// notifier after a today pass.
type LateEmployee struct {
	FullName    string
	Phone       string
	LateMinutes int
}

type IngestResult struct {
	Processed int
	Skipped   int
	Failed    int
	// Late maps phone -> employee for downstream notification. Collected on
	// every run; dispatched only from the today pass.
	Late map[string]LateEmployee
}
