package audio

import (
	"context"
	"errors"
	"time"

	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/models"
	"github.com/ManmohanBuildsProducts/hindi-indic-transcription-tool/internal/utils"
)

// Segmenter decodes a submitted recording and splits it into
// fixed-duration chunks. Pure over its input: it owns no state and any
// temp storage used by the fallback decoder is cleaned up internally.
type Segmenter struct {
	// Fallback handles formats the native WAV path cannot: webm and
	// non-PCM wav encodings. Nil disables the fallback.
	Fallback Decoder
}

// Segment decodes raw with the declared format, retrying once with the
// alternate container when the first decode fails (browsers are known
// to mislabel recorder output), then splits the normalized audio into
// WindowDuration chunks, dropping a trailing partial below
// MinSegmentDuration.
func (s *Segmenter) Segment(ctx context.Context, raw []byte, declared models.Format) ([]Chunk, error) {
	const op = "Segmenter.Segment"

	if len(raw) == 0 {
		return nil, utils.E(utils.CodeEmptyAudio, op, "empty audio payload", nil)
	}

	samples, err := s.decode(ctx, raw, declared)
	if err != nil {
		var altErr error
		samples, altErr = s.decode(ctx, raw, declared.Alternate())
		if altErr != nil {
			return nil, utils.E(utils.CodeDecodeFailed, op, "audio could not be decoded as "+string(declared)+" or "+string(declared.Alternate()), errors.Join(err, altErr))
		}
	}
	if len(samples) == 0 {
		return nil, utils.E(utils.CodeEmptyAudio, op, "decoded audio is empty", nil)
	}

	window := int(WindowDuration.Seconds()) * SampleRate
	minLen := int(MinSegmentDuration.Seconds()) * SampleRate

	var chunks []Chunk
	for start := 0; start < len(samples); start += window {
		end := start + window
		if end > len(samples) {
			end = len(samples)
		}
		part := samples[start:end]
		if len(part) < minLen {
			continue
		}
		chunks = append(chunks, Chunk{
			Index:    len(chunks),
			Samples:  part,
			Duration: time.Duration(len(part)) * time.Second / SampleRate,
		})
	}
	if len(chunks) == 0 {
		return nil, utils.E(utils.CodeNoValidSegments, op, "no segment reached the minimum duration", nil)
	}
	return chunks, nil
}

func (s *Segmenter) decode(ctx context.Context, raw []byte, format models.Format) ([]int16, error) {
	if format == models.FormatWAV {
		samples, err := decodeWAV(raw)
		if err == nil {
			return samples, nil
		}
		if s.Fallback == nil {
			return nil, err
		}
		// compressed or malformed wav: let ffmpeg have a go
	}
	if s.Fallback == nil {
		return nil, errors.New("no decoder available for format " + string(format))
	}
	return s.Fallback.Decode(ctx, raw, format)
}

// TotalDuration sums chunk durations; it is the recording's immutable
// duration computed once at submission.
func TotalDuration(chunks []Chunk) time.Duration {
	var total time.Duration
	for _, c := range chunks {
		total += c.Duration
	}
	return total
}
