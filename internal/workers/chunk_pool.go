package workers

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/audio"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories"
)

// Transcriber is the retrying transcription client from the pool's
// point of view: one call per segment, classified error on exhaustion.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// ChunkPool dispatches every segment of one recording concurrently,
// bounded by a weighted semaphore so segment count never dictates the
// number of in-flight network calls. Segments fail independently; one
// bad segment never cancels its siblings.
type ChunkPool struct {
	Recordings repositories.RecordingRepository
	Jobs       repositories.JobRepository
	Transcribe Transcriber
	Logger     *logrus.Logger

	// MaxInFlight caps concurrent transcriptions. <= 0 means the
	// default of 4.
	MaxInFlight int64
}

const defaultMaxInFlight = 4

// Process runs all chunks to settlement and returns the success count
// plus results ordered by original index. Completion order is
// unordered; results are written at their index so assembly stays
// order-correct regardless of scheduling.
func (p *ChunkPool) Process(ctx context.Context, recordingID string, chunks []audio.Chunk) (int, []models.ChunkResult, error) {
	if p.Recordings == nil || p.Jobs == nil || p.Transcribe == nil {
		return 0, nil, errors.New("ChunkPool missing dependency: Recordings/Jobs/Transcribe must be set")
	}
	log := p.Logger
	if log == nil {
		log = logrus.New()
	}
	weight := p.MaxInFlight
	if weight <= 0 {
		weight = defaultMaxInFlight
	}

	sem := semaphore.NewWeighted(weight)
	results := make([]models.ChunkResult, len(chunks))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for _, c := range chunks {
		wg.Add(1)
		go func(c audio.Chunk) {
			defer wg.Done()

			res := p.runOne(ctx, sem, recordingID, c, log)
			mu.Lock()
			results[c.Index] = res
			if res.Succeeded() {
				succeeded++
			}
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	return succeeded, results, nil
}

// runOne settles a single segment: transcribe, bump counters, record
// the chunk result and the job entry. Repository write failures are
// logged but do not unsettle the segment.
func (p *ChunkPool) runOne(ctx context.Context, sem *semaphore.Weighted, recordingID string, c audio.Chunk, log *logrus.Logger) models.ChunkResult {
	entry := log.WithFields(logrus.Fields{
		"recording_id": recordingID,
		"chunk_index":  c.Index,
	})

	job := &models.Job{
		JobID:       uuid.NewString(),
		RecordingID: recordingID,
		ChunkIndex:  c.Index,
		Status:      models.JobProcessing,
	}
	if err := p.Jobs.Create(ctx, job); err != nil {
		entry.WithError(err).Warn("job record create failed")
	}

	var (
		text string
		err  error
	)
	if acqErr := sem.Acquire(ctx, 1); acqErr != nil {
		err = acqErr
	} else {
		text, err = p.Transcribe.Transcribe(ctx, audio.EncodeWAV(c.Samples))
		sem.Release(1)
	}

	res := models.ChunkResult{
		RecordingID: recordingID,
		Index:       c.Index,
	}
	if err != nil {
		msg := err.Error()
		res.Error = &msg
		entry.WithError(err).Warn("chunk transcription failed")
	} else {
		res.Transcript = &text
	}

	if incErr := p.Recordings.IncrementProcessed(ctx, recordingID, err != nil); incErr != nil {
		entry.WithError(incErr).Error("progress counter update failed")
	}
	if appErr := p.Recordings.AppendChunk(ctx, &res); appErr != nil {
		entry.WithError(appErr).Error("chunk result write failed")
	}

	status := models.JobCompleted
	if err != nil {
		status = models.JobFailed
	}
	if updErr := p.Jobs.Update(ctx, job.JobID, status, res.Transcript, res.Error); updErr != nil {
		entry.WithError(updErr).Warn("job record update failed")
	}

	return res
}
