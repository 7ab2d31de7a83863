package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/repositories"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordingRepo is the Mongo-backed store, selected when MONGO_URI is
// set. Counter invariants are enforced with guarded updates: the filter
// only matches documents where the increment is still legal, so a lost
// or double increment cannot happen even with many writers.
type RecordingRepo struct {
	recordings *mongo.Collection
	chunks     *mongo.Collection
}

func NewRecordingRepo(db *mongo.Database) *RecordingRepo {
	return &RecordingRepo{
		recordings: db.Collection("recordings"),
		chunks:     db.Collection("chunks"),
	}
}

var _ repositories.RecordingRepository = (*RecordingRepo)(nil)

func (r *RecordingRepo) Create(ctx context.Context, rec *models.Recording) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := r.recordings.InsertOne(ctx, rec)
	return err
}

func (r *RecordingRepo) Get(ctx context.Context, id string) (*models.Recording, error) {
	var rec models.Recording
	err := r.recordings.FindOne(ctx, bson.M{"recording_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecordingRepo) List(ctx context.Context) ([]models.Recording, error) {
	cur, err := r.recordings.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Recording
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RecordingRepo) IncrementProcessed(ctx context.Context, id string, failed bool) error {
	inc := bson.M{"processed_chunks": 1}
	if failed {
		inc["failed_chunks"] = 1
	}
	res, err := r.recordings.UpdateOne(ctx,
		bson.M{
			"recording_id": id,
			// keep processed <= total
			"$expr": bson.M{"$lt": bson.A{"$processed_chunks", "$total_chunks"}},
		},
		bson.M{"$inc": inc},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("recording %s: increment refused (unknown id or counters full)", id)
	}
	return nil
}

func (r *RecordingRepo) Finalize(ctx context.Context, id string, status models.Status, transcript, errMsg, warning *string) error {
	set := bson.M{"status": status}
	if transcript != nil {
		set["transcript"] = *transcript
	}
	if errMsg != nil {
		set["error"] = *errMsg
	}
	if warning != nil {
		set["warning"] = *warning
	}
	res, err := r.recordings.UpdateOne(ctx,
		bson.M{"recording_id": id, "status": models.StatusProcessing},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("recording %s: already finalized or unknown", id)
	}
	return nil
}

func (r *RecordingRepo) AppendChunk(ctx context.Context, chunk *models.ChunkResult) error {
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}
	// the unique (recording_id, chunk_index) index rejects doubles
	_, err := r.chunks.InsertOne(ctx, chunk)
	return err
}

func (r *RecordingRepo) ListChunks(ctx context.Context, recordingID string) ([]models.ChunkResult, error) {
	// an unknown recording must surface as not-found, not as an empty
	// chunk list
	err := r.recordings.FindOne(ctx,
		bson.M{"recording_id": recordingID},
		options.FindOne().SetProjection(bson.M{"recording_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cur, err := r.chunks.Find(ctx,
		bson.M{"recording_id": recordingID},
		options.Find().SetSort(bson.D{{Key: "chunk_index", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ChunkResult{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
