package history

import "time"

// Outcome classifies how a packaging run ended.
type Outcome string

const (
	// OutcomePackaged means validation passed and an archive was written.
	OutcomePackaged Outcome = "packaged"
	// OutcomeRejected means schema violations aborted packaging.
	OutcomeRejected Outcome = "rejected"
)

// Run is one recorded packaging invocation.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Leaderboard string
	Dataset     string
	Submission  string
	TaskMode    string
	Outcome     Outcome
	Files       int
	Records     int
	Violations  int
	ArchivePath string
	ArchiveSHA  string
}
