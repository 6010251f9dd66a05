package domain

// SentinelRecord is the persisted text form of a job's sentinel, as seen by
// the inspection commands.
type SentinelRecord struct {
	Job       string
	Value     string
	UpdatedAt int64
}
