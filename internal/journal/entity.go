package journal

import "time"

type Status string

const (
	StatusAccepted  Status = "ACCEPTED"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Record is the durable audit entry for one round of one task. It is written
// when the round is accepted and rewritten when the round finishes, so a
// crashed worker leaves an ACCEPTED record behind as evidence.
type Record struct {
	JobID        string            `yaml:"job_id"`
	Task         string            `yaml:"task"`
	Round        int               `yaml:"round"`
	Status       Status            `yaml:"status"`
	CommitSHA    string            `yaml:"commit_sha,omitempty"`
	FilesWritten []string          `yaml:"files_written,omitempty"`
	Diffs        map[string]string `yaml:"diffs,omitempty"`
	Error        string            `yaml:"error,omitempty"`
	StartedAt    time.Time         `yaml:"started_at"`
	FinishedAt   time.Time         `yaml:"finished_at,omitempty"`
}
