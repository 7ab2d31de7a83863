package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
)

// RecordingRepo is the in-process store. All mutation is serialized
// behind one mutex, which is what makes concurrent chunk settlement
// race-free.
type RecordingRepo struct {
	mu         sync.Mutex
	recordings map[string]*models.Recording
	chunks     map[string][]*models.ChunkResult
}

func NewRecordingRepo() *RecordingRepo {
	return &RecordingRepo{
		recordings: make(map[string]*models.Recording),
		chunks:     make(map[string][]*models.ChunkResult),
	}
}

var _ repositories.RecordingRepository = (*RecordingRepo)(nil)

func (r *RecordingRepo) Create(ctx context.Context, rec *models.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recordings[rec.ID]; ok {
		return fmt.Errorf("recording %s already exists", rec.ID)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	cp := *rec
	r.recordings[rec.ID] = &cp
	return nil
}

func (r *RecordingRepo) Get(ctx context.Context, id string) (*models.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recordings[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *RecordingRepo) List(ctx context.Context) ([]models.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Recording, 0, len(r.recordings))
	for _, rec := range r.recordings {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *RecordingRepo) IncrementProcessed(ctx context.Context, id string, failed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recordings[id]
	if !ok {
		return utils.ErrNotFound
	}
	if rec.ProcessedChunks >= rec.TotalChunks {
		return fmt.Errorf("recording %s: processed_chunks already at total (%d)", id, rec.TotalChunks)
	}
	rec.ProcessedChunks++
	if failed {
		rec.FailedChunks++
	}
	return nil
}

func (r *RecordingRepo) Finalize(ctx context.Context, id string, status models.Status, transcript, errMsg, warning *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recordings[id]
	if !ok {
		return utils.ErrNotFound
	}
	if rec.Status.Terminal() {
		return fmt.Errorf("recording %s already finalized as %s", id, rec.Status)
	}
	rec.Status = status
	rec.Transcript = transcript
	rec.Error = errMsg
	rec.Warning = warning
	return nil
}

func (r *RecordingRepo) AppendChunk(ctx context.Context, chunk *models.ChunkResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recordings[chunk.RecordingID]; !ok {
		return utils.ErrNotFound
	}
	for _, existing := range r.chunks[chunk.RecordingID] {
		if existing.Index == chunk.Index {
			return fmt.Errorf("chunk %d of recording %s already recorded", chunk.Index, chunk.RecordingID)
		}
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}
	cp := *chunk
	r.chunks[chunk.RecordingID] = append(r.chunks[chunk.RecordingID], &cp)
	return nil
}

func (r *RecordingRepo) ListChunks(ctx context.Context, recordingID string) ([]models.ChunkResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recordings[recordingID]; !ok {
		return nil, utils.ErrNotFound
	}
	out := make([]models.ChunkResult, 0, len(r.chunks[recordingID]))
	for _, c := range r.chunks[recordingID] {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}
