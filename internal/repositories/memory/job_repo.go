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

type JobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func NewJobRepo() *JobRepo {
	return &JobRepo{jobs: make(map[string]*models.Job)}
}

var _ repositories.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) Create(ctx context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.JobID]; ok {
		return fmt.Errorf("job %s already exists", job.JobID)
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	cp := *job
	r.jobs[job.JobID] = &cp
	return nil
}

func (r *JobRepo) Update(ctx context.Context, jobID string, status models.JobStatus, transcript, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return utils.ErrNotFound
	}
	job.Status = status
	job.Transcript = transcript
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *JobRepo) ListByRecording(ctx context.Context, recordingID string) ([]models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Job
	for _, j := range r.jobs {
		if j.RecordingID == recordingID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}
