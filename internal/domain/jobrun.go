package domain

import "time"

// Job names recorded in run logs and used as advisory lock keys.
const (
	JobEnrollment = "winback:enroll"
	JobDispatch   = "winback:dispatch"
)

// JobRun is the audit record written once per job invocation. Details holds
// the run's counters as a JSON blob.
type JobRun struct {
	ID        string
	JobName   string
	RunDate   time.Time
	Success   bool
	Details   string
	CreatedAt time.Time
}
