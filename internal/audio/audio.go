package audio

import (
	"context"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
)

const (
	// SampleRate is the canonical rate every chunk is normalized to
	// before segmentation and transmission.
	SampleRate = 16000

	// WindowDuration is the fixed length of one transcription segment.
	WindowDuration = 8 * time.Minute

	// MinSegmentDuration is the floor below which a trailing partial
	// window is dropped instead of transcribed.
	MinSegmentDuration = time.Second
)

// Chunk is one bounded slice of the normalized recording, the unit of
// transcription work. Samples are mono 16 kHz signed 16-bit PCM.
type Chunk struct {
	Index    int
	Samples  []int16
	Duration time.Duration
}

// Decoder turns raw container bytes into mono PCM at SampleRate. It is
// the external collaborator for formats the native WAV path cannot
// handle (webm, compressed wav encodings).
type Decoder interface {
	Decode(ctx context.Context, raw []byte, format models.Format) ([]int16, error)
}
