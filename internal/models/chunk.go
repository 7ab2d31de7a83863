package models

import "time"

// ChunkResult is the settled outcome of one segment, written exactly once.
// Exactly one of Transcript/Error is set; an empty transcript means the
// service heard no speech, which is still success.
type ChunkResult struct {
	RecordingID string    `bson:"recording_id" json:"-"`
	Index       int       `bson:"chunk_index" json:"index"`
	Transcript  *string   `bson:"transcript,omitempty" json:"transcript,omitempty"`
	Error       *string   `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

func (c ChunkResult) Succeeded() bool { return c.Transcript != nil }
