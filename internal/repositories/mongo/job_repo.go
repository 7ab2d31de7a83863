package mongo

import (
	"context"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type JobRepo struct {
	col *mongo.Collection
}

func NewJobRepo(db *mongo.Database) *JobRepo {
	return &JobRepo{col: db.Collection("jobs")}
}

var _ repositories.JobRepository = (*JobRepo)(nil)

func (r *JobRepo) Create(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, job)
	return err
}

func (r *JobRepo) Update(ctx context.Context, jobID string, status models.JobStatus, transcript, errMsg *string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if transcript != nil {
		set["transcript"] = *transcript
	}
	if errMsg != nil {
		set["error"] = *errMsg
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"job_id": jobID}, bson.M{"$set": set})
	return err
}

func (r *JobRepo) ListByRecording(ctx context.Context, recordingID string) ([]models.Job, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"recording_id": recordingID},
		options.Find().SetSort(bson.D{{Key: "chunk_index", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Job{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
