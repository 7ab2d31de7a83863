package repositories

import (
	"context"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
)

// RecordingRepository owns all recording state. Counter mutation goes
// through IncrementProcessed so processed <= total and
// failed <= processed hold under concurrent chunk completion, and
// Finalize is a no-op once a recording is terminal.
type RecordingRepository interface {
	Create(ctx context.Context, rec *models.Recording) error
	Get(ctx context.Context, id string) (*models.Recording, error)
	List(ctx context.Context) ([]models.Recording, error)

	// IncrementProcessed advances processed_chunks by one (and
	// failed_chunks when failed is true) for a settled segment.
	IncrementProcessed(ctx context.Context, id string, failed bool) error

	// Finalize records the terminal outcome exactly once.
	Finalize(ctx context.Context, id string, status models.Status, transcript, errMsg, warning *string) error

	// AppendChunk stores a settled chunk result, once per index.
	AppendChunk(ctx context.Context, chunk *models.ChunkResult) error
	ListChunks(ctx context.Context, recordingID string) ([]models.ChunkResult, error)
}

// JobRepository records per-segment job diagnostics. Jobs are written
// once, updated once when the segment settles, and never deleted.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, jobID string, status models.JobStatus, transcript, errMsg *string) error
	ListByRecording(ctx context.Context, recordingID string) ([]models.Job, error)
}
