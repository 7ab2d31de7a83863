package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
)

func monoWAV(t *testing.T, d time.Duration) []byte {
	t.Helper()
	frames := int(d.Seconds() * SampleRate)
	return buildWAV(t, 1, SampleRate, func(frame, channel int) int16 { return int16(frame % 128) }, frames)
}

func TestSegmentSeventeenMinutes(t *testing.T) {
	s := &Segmenter{}
	raw := monoWAV(t, 17*time.Minute)

	chunks, err := s.Segment(context.Background(), raw, models.FormatWAV)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	want := []time.Duration{8 * time.Minute, 8 * time.Minute, time.Minute}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
		if c.Duration != want[i] {
			t.Fatalf("chunk %d duration = %v, want %v", i, c.Duration, want[i])
		}
	}
	if got := TotalDuration(chunks); got != 17*time.Minute {
		t.Fatalf("total duration = %v, want 17m", got)
	}
}

func TestSegmentDropsSubSecondTail(t *testing.T) {
	s := &Segmenter{}
	// 8 minutes plus half a second: the tail is below the floor
	raw := monoWAV(t, 8*time.Minute+500*time.Millisecond)

	chunks, err := s.Segment(context.Background(), raw, models.FormatWAV)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestSegmentKeepsOneSecondTail(t *testing.T) {
	s := &Segmenter{}
	raw := monoWAV(t, 8*time.Minute+time.Second)

	chunks, err := s.Segment(context.Background(), raw, models.FormatWAV)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[1].Duration != time.Second {
		t.Fatalf("tail duration = %v, want 1s", chunks[1].Duration)
	}
}

func TestSegmentEmptyPayload(t *testing.T) {
	s := &Segmenter{}
	if _, err := s.Segment(context.Background(), nil, models.FormatWAV); !utils.IsCode(err, utils.CodeEmptyAudio) {
		t.Fatalf("err = %v, want EMPTY_AUDIO", err)
	}
}

func TestSegmentTooShortAudio(t *testing.T) {
	s := &Segmenter{}
	raw := monoWAV(t, 200*time.Millisecond)
	if _, err := s.Segment(context.Background(), raw, models.FormatWAV); !utils.IsCode(err, utils.CodeNoValidSegments) {
		t.Fatalf("err = %v, want NO_VALID_SEGMENTS", err)
	}
}

func TestSegmentMislabeledContentType(t *testing.T) {
	s := &Segmenter{Fallback: failingDecoder{}}
	// declared webm but the bytes are a plain wav; the alternate
	// format attempt must rescue it
	raw := monoWAV(t, 2*time.Second)

	chunks, err := s.Segment(context.Background(), raw, models.FormatWebM)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestSegmentUndecodableBytes(t *testing.T) {
	s := &Segmenter{Fallback: failingDecoder{}}
	if _, err := s.Segment(context.Background(), []byte("definitely not audio"), models.FormatWAV); !utils.IsCode(err, utils.CodeDecodeFailed) {
		t.Fatalf("err = %v, want DECODE_FAILED", err)
	}
}

func TestSegmentWebMWithoutFallback(t *testing.T) {
	s := &Segmenter{}
	if _, err := s.Segment(context.Background(), []byte{0x1a, 0x45, 0xdf, 0xa3}, models.FormatWebM); !utils.IsCode(err, utils.CodeDecodeFailed) {
		t.Fatalf("err = %v, want DECODE_FAILED", err)
	}
}

type failingDecoder struct{}

func (failingDecoder) Decode(ctx context.Context, raw []byte, format models.Format) ([]int16, error) {
	return nil, errors.New("decoder unavailable")
}
