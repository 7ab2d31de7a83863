package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
)

func newRecording(id string, total int) *models.Recording {
	return &models.Recording{
		ID:          id,
		Timestamp:   time.Now().UTC(),
		Duration:    120,
		Source:      models.SourceMicrophone,
		Format:      models.FormatWAV,
		Status:      models.StatusProcessing,
		TotalChunks: total,
	}
}

func TestRecordingRepoGetUnknown(t *testing.T) {
	r := NewRecordingRepo()
	if _, err := r.Get(context.Background(), "nope"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordingRepoCounterCeiling(t *testing.T) {
	r := NewRecordingRepo()
	ctx := context.Background()
	if err := r.Create(ctx, newRecording("rec-1", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := r.IncrementProcessed(ctx, "rec-1", i == 1); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	// a third settle has no chunk to account for
	if err := r.IncrementProcessed(ctx, "rec-1", false); err == nil {
		t.Fatal("expected refusal past total_chunks")
	}

	rec, err := r.Get(ctx, "rec-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ProcessedChunks != 2 || rec.FailedChunks != 1 {
		t.Fatalf("counters = %d/%d, want 2/1", rec.ProcessedChunks, rec.FailedChunks)
	}
}

func TestRecordingRepoConcurrentIncrements(t *testing.T) {
	r := NewRecordingRepo()
	ctx := context.Background()
	const total = 64
	if err := r.Create(ctx, newRecording("rec-1", total)); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(failed bool) {
			defer wg.Done()
			if err := r.IncrementProcessed(ctx, "rec-1", failed); err != nil {
				t.Errorf("increment: %v", err)
			}
		}(i%4 == 0)
	}
	wg.Wait()

	rec, _ := r.Get(ctx, "rec-1")
	if rec.ProcessedChunks != total {
		t.Fatalf("processed = %d, want %d (lost updates)", rec.ProcessedChunks, total)
	}
	if rec.FailedChunks != total/4 {
		t.Fatalf("failed = %d, want %d", rec.FailedChunks, total/4)
	}
}

func TestRecordingRepoFinalizeOnce(t *testing.T) {
	r := NewRecordingRepo()
	ctx := context.Background()
	if err := r.Create(ctx, newRecording("rec-1", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}

	transcript := "पहला"
	if err := r.Finalize(ctx, "rec-1", models.StatusCompleted, &transcript, nil, nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	other := "दूसरा"
	if err := r.Finalize(ctx, "rec-1", models.StatusFailed, &other, nil, nil); err == nil {
		t.Fatal("expected second finalize to be refused")
	}

	rec, _ := r.Get(ctx, "rec-1")
	if rec.Status != models.StatusCompleted || rec.Transcript == nil || *rec.Transcript != "पहला" {
		t.Fatalf("terminal state mutated: %+v", rec)
	}
}

func TestRecordingRepoChunkWrittenOncePerIndex(t *testing.T) {
	r := NewRecordingRepo()
	ctx := context.Background()
	if err := r.Create(ctx, newRecording("rec-1", 2)); err != nil {
		t.Fatalf("create: %v", err)
	}

	text := "खंड"
	chunk := &models.ChunkResult{RecordingID: "rec-1", Index: 0, Transcript: &text}
	if err := r.AppendChunk(ctx, chunk); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := r.AppendChunk(ctx, chunk); err == nil {
		t.Fatal("expected duplicate index to be refused")
	}
}

func TestRecordingRepoChunksSortedByIndex(t *testing.T) {
	r := NewRecordingRepo()
	ctx := context.Background()
	if err := r.Create(ctx, newRecording("rec-1", 3)); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, idx := range []int{2, 0, 1} { // out of completion order
		text := "x"
		if err := r.AppendChunk(ctx, &models.ChunkResult{RecordingID: "rec-1", Index: idx, Transcript: &text}); err != nil {
			t.Fatalf("append %d: %v", idx, err)
		}
	}

	chunks, err := r.ListChunks(ctx, "rec-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunks not sorted: position %d has index %d", i, c.Index)
		}
	}
}

func TestRecordingRepoListNewestFirst(t *testing.T) {
	r := NewRecordingRepo()
	ctx := context.Background()

	older := newRecording("old", 1)
	older.Timestamp = time.Now().UTC().Add(-time.Hour)
	newer := newRecording("new", 1)

	if err := r.Create(ctx, older); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.Create(ctx, newer); err != nil {
		t.Fatalf("create: %v", err)
	}

	recs, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "new" {
		t.Fatalf("unexpected order: %+v", recs)
	}
}
