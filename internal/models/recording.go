package models

import "time"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Source string

const (
	SourceMicrophone Source = "microphone"
	SourceSystem     Source = "system"
)

type Format string

const (
	FormatWAV  Format = "wav"
	FormatWebM Format = "webm"
)

// Alternate returns the other supported container, used to retry a decode
// when the declared content type turns out to be mislabelled.
func (f Format) Alternate() Format {
	if f == FormatWAV {
		return FormatWebM
	}
	return FormatWAV
}

// Recording is the user-facing aggregate for one submitted audio file.
// Counters are mutated only through repository methods so that
// processed <= total and failed <= processed always hold.
type Recording struct {
	ID        string    `bson:"recording_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Duration  float64   `bson:"duration" json:"duration"` // seconds, fixed at submission
	Source    Source    `bson:"source" json:"source"`
	Format    Format    `bson:"format" json:"format"`
	Status    Status    `bson:"status" json:"status"`

	Transcript *string `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Error      *string `bson:"error,omitempty" json:"error,omitempty"`
	Warning    *string `bson:"warning,omitempty" json:"warning,omitempty"`

	TotalChunks     int `bson:"total_chunks" json:"total_chunks"`
	ProcessedChunks int `bson:"processed_chunks" json:"processed_chunks"`
	FailedChunks    int `bson:"failed_chunks" json:"failed_chunks"`
}
