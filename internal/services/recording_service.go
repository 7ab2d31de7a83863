package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/audio"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/cache"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/storage"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/workers"
)

const (
	// TestModeFilename is the reserved upload filename that bypasses
	// segmentation and transcription, used to exercise the HTTP layer
	// without touching the speech service.
	TestModeFilename = "test_recording"

	testModeTranscript = "नमस्ते, यह एक परीक्षण प्रतिलेख है।"
	testModeDelay      = 2 * time.Second

	cacheTTL = 24 * time.Hour
)

// SubmitInput is one uploaded recording as the HTTP layer received it.
type SubmitInput struct {
	Filename    string
	ContentType string
	Source      string
	Data        []byte
}

// RecordingSummary is the listing shape: transcript is redacted to a
// presence flag to keep list payloads small.
type RecordingSummary struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	Duration        float64       `json:"duration"`
	Source          models.Source `json:"source"`
	Format          models.Format `json:"format"`
	Status          models.Status `json:"status"`
	HasTranscript   bool          `json:"has_transcript"`
	Error           *string       `json:"error,omitempty"`
	Warning         *string       `json:"warning,omitempty"`
	TotalChunks     int           `json:"total_chunks"`
	ProcessedChunks int           `json:"processed_chunks"`
	FailedChunks    int           `json:"failed_chunks"`
}

type RecordingService interface {
	Submit(ctx context.Context, in SubmitInput) (*models.Recording, error)
	Get(ctx context.Context, id string) (*models.Recording, error)
	List(ctx context.Context) ([]RecordingSummary, error)
	Chunks(ctx context.Context, id string) ([]models.ChunkResult, error)
}

// Segmenter is the audio-splitting collaborator; *audio.Segmenter is
// the production implementation.
type Segmenter interface {
	Segment(ctx context.Context, raw []byte, declared models.Format) ([]audio.Chunk, error)
}

type recordingService struct {
	recordings repositories.RecordingRepository
	jobs       repositories.JobRepository
	segmenter  Segmenter
	pool       *workers.ChunkPool
	uploader   storage.Uploader // optional raw-audio archival
	cache      cache.Cache      // optional terminal-snapshot cache
	log        *logrus.Logger

	testDelay time.Duration

	// afterFinalize fires once the terminal status is recorded;
	// tests hook it to wait for async settlement.
	afterFinalize func(recordingID string)
}

type Options struct {
	Uploader storage.Uploader
	Cache    cache.Cache
}

func NewRecordingService(
	recordings repositories.RecordingRepository,
	jobs repositories.JobRepository,
	segmenter Segmenter,
	pool *workers.ChunkPool,
	log *logrus.Logger,
	opts Options,
) RecordingService {
	if log == nil {
		log = logrus.New()
	}
	return &recordingService{
		recordings: recordings,
		jobs:       jobs,
		segmenter:  segmenter,
		pool:       pool,
		uploader:   opts.Uploader,
		cache:      opts.Cache,
		log:        log,
		testDelay:  testModeDelay,
	}
}

func (s *recordingService) Submit(ctx context.Context, in SubmitInput) (*models.Recording, error) {
	const op = "RecordingService.Submit"

	source, err := parseSource(in.Source)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "source must be 'microphone' or 'system'", err)
	}
	format, err := parseContentType(in.ContentType)
	if err != nil {
		return nil, utils.E(utils.CodeUnsupportedFormat, op, "unsupported audio format: "+in.ContentType, err)
	}
	if len(in.Data) == 0 {
		return nil, utils.E(utils.CodeEmptyAudio, op, "empty audio payload", nil)
	}

	if isTestMode(in.Filename) {
		return s.submitTestMode(ctx, source, format)
	}

	chunks, err := s.segmenter.Segment(ctx, in.Data, format)
	if err != nil {
		// fail fast: no recording is created on segmentation failure
		return nil, err
	}

	rec := &models.Recording{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Duration:    audio.TotalDuration(chunks).Seconds(),
		Source:      source,
		Format:      format,
		Status:      models.StatusProcessing,
		TotalChunks: len(chunks),
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create recording", err)
	}

	s.archive(rec, in.Data)
	go s.process(rec.ID, chunks)

	return rec, nil
}

// process runs the chunk pool to completion and finalizes the
// recording exactly once. It is detached from the request context:
// once accepted, a recording settles on its own schedule and callers
// observe it by polling.
func (s *recordingService) process(recordingID string, chunks []audio.Chunk) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("recording_id", recordingID).
				Errorf("panic while gathering segment results: %v", r)
			msg := fmt.Sprintf("internal error while gathering segment results: %v", r)
			s.finalize(ctx, recordingID, models.StatusFailed, nil, &msg, nil)
		}
	}()

	succeeded, results, err := s.pool.Process(ctx, recordingID, chunks)
	if err != nil {
		msg := "segment dispatch failed: " + err.Error()
		s.finalize(ctx, recordingID, models.StatusFailed, nil, &msg, nil)
		return
	}

	status, transcript, errMsg, warning := settle(succeeded, results)
	s.finalize(ctx, recordingID, status, transcript, errMsg, warning)
}

// settle applies the terminal transition rule over settled chunk
// results, which arrive already ordered by original index.
func settle(succeeded int, results []models.ChunkResult) (models.Status, *string, *string, *string) {
	if succeeded == 0 {
		msg := "all segments failed"
		return models.StatusFailed, nil, &msg, nil
	}

	texts := make([]string, 0, succeeded)
	var failed []string
	for _, r := range results {
		if r.Succeeded() {
			texts = append(texts, *r.Transcript)
		} else {
			failed = append(failed, fmt.Sprintf("%d", r.Index))
		}
	}
	transcript := strings.Join(texts, " ")

	var warning *string
	if len(failed) > 0 {
		w := fmt.Sprintf("%d of %d segments failed transcription (indices: %s)",
			len(failed), len(results), strings.Join(failed, ", "))
		warning = &w
	}
	return models.StatusCompleted, &transcript, nil, warning
}

func (s *recordingService) finalize(ctx context.Context, id string, status models.Status, transcript, errMsg, warning *string) {
	if err := s.recordings.Finalize(ctx, id, status, transcript, errMsg, warning); err != nil {
		s.log.WithField("recording_id", id).WithError(err).Error("finalize failed")
	} else if s.cache != nil {
		if rec, err := s.recordings.Get(ctx, id); err == nil {
			if err := s.cache.SetJSON(ctx, cacheKey(id), rec, cacheTTL); err != nil {
				s.log.WithField("recording_id", id).WithError(err).Warn("snapshot cache write failed")
			}
		}
	}
	if s.afterFinalize != nil {
		s.afterFinalize(id)
	}
}

// submitTestMode skips the pipeline entirely and completes after a
// fixed delay with a canned transcript.
func (s *recordingService) submitTestMode(ctx context.Context, source models.Source, format models.Format) (*models.Recording, error) {
	const op = "RecordingService.Submit"

	rec := &models.Recording{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Duration:    audio.MinSegmentDuration.Seconds(),
		Source:      source,
		Format:      format,
		Status:      models.StatusProcessing,
		TotalChunks: 1,
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create recording", err)
	}

	go func() {
		time.Sleep(s.testDelay)

		bg := context.Background()
		transcript := testModeTranscript
		if err := s.recordings.IncrementProcessed(bg, rec.ID, false); err != nil {
			s.log.WithField("recording_id", rec.ID).WithError(err).Error("test-mode counter update failed")
		}
		if err := s.recordings.AppendChunk(bg, &models.ChunkResult{
			RecordingID: rec.ID,
			Index:       0,
			Transcript:  &transcript,
		}); err != nil {
			s.log.WithField("recording_id", rec.ID).WithError(err).Error("test-mode chunk write failed")
		}
		s.finalize(bg, rec.ID, models.StatusCompleted, &transcript, nil, nil)
	}()

	return rec, nil
}

func (s *recordingService) Get(ctx context.Context, id string) (*models.Recording, error) {
	const op = "RecordingService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "recording id is required", nil)
	}

	if s.cache != nil {
		var cached models.Recording
		if hit, err := s.cache.GetJSON(ctx, cacheKey(id), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	rec, err := s.recordings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Recording not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get recording", err)
	}
	return rec, nil
}

func (s *recordingService) List(ctx context.Context) ([]RecordingSummary, error) {
	const op = "RecordingService.List"

	recs, err := s.recordings.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recordings", err)
	}

	out := make([]RecordingSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, RecordingSummary{
			ID:              r.ID,
			Timestamp:       r.Timestamp,
			Duration:        r.Duration,
			Source:          r.Source,
			Format:          r.Format,
			Status:          r.Status,
			HasTranscript:   r.Transcript != nil,
			Error:           r.Error,
			Warning:         r.Warning,
			TotalChunks:     r.TotalChunks,
			ProcessedChunks: r.ProcessedChunks,
			FailedChunks:    r.FailedChunks,
		})
	}
	return out, nil
}

func (s *recordingService) Chunks(ctx context.Context, id string) ([]models.ChunkResult, error) {
	const op = "RecordingService.Chunks"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "recording id is required", nil)
	}

	chunks, err := s.recordings.ListChunks(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Recording not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to list chunks", err)
	}
	return chunks, nil
}

// archive uploads the original bytes when an uploader is configured.
// Archival is best effort and never fails the submission.
func (s *recordingService) archive(rec *models.Recording, data []byte) {
	if s.uploader == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		object := "recordings/" + rec.ID + "." + string(rec.Format)
		contentType := "audio/" + string(rec.Format)
		if _, err := s.uploader.Upload(ctx, object, contentType, bytes.NewReader(data)); err != nil {
			s.log.WithField("recording_id", rec.ID).WithError(err).Warn("raw audio archival failed")
		}
	}()
}

func parseSource(v string) (models.Source, error) {
	switch models.Source(strings.TrimSpace(v)) {
	case "", models.SourceMicrophone:
		return models.SourceMicrophone, nil
	case models.SourceSystem:
		return models.SourceSystem, nil
	default:
		return "", fmt.Errorf("unknown source %q", v)
	}
}

func parseContentType(v string) (models.Format, error) {
	ct := strings.ToLower(strings.TrimSpace(v))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "audio/wav", "audio/wave":
		return models.FormatWAV, nil
	case "audio/webm":
		return models.FormatWebM, nil
	default:
		return "", fmt.Errorf("content type %q is not supported", v)
	}
}

func isTestMode(filename string) bool {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) == TestModeFilename
}

func cacheKey(id string) string { return "recording:" + id }
