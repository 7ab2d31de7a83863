package models

import "time"

type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is a diagnostic record of one segment's transcription lifecycle.
// It is written when the segment starts, updated once when it settles,
// and never consulted for control flow.
type Job struct {
	JobID       string    `bson:"job_id" json:"job_id"`
	RecordingID string    `bson:"recording_id" json:"recording_id"`
	ChunkIndex  int       `bson:"chunk_index" json:"chunk_index"`
	Status      JobStatus `bson:"status" json:"status"`
	Transcript  *string   `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Error       *string   `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
