package stt

import (
	"context"
	"fmt"
)

// Provider performs a single transcription attempt over one segment of
// canonical WAV audio (mono 16 kHz PCM). Retry policy lives in
// Retrying, not in implementations.
type Provider interface {
	Transcribe(ctx context.Context, wav []byte) (text string, err error)
	Close() error
}

// FailureKind classifies a transcription attempt failure. The kind
// decides backoff behavior and what the chunk record finally reports.
type FailureKind string

const (
	FailureTransport   FailureKind = "transport"
	FailureService     FailureKind = "service"
	FailureParse       FailureKind = "parse"
	FailureRateLimited FailureKind = "rate_limited"
)

// Failure is a classified attempt outcome. Attempts are retried
// locally; callers only ever see the failure left after the retry
// budget is exhausted.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	switch {
	case f.Message != "":
		return fmt.Sprintf("transcription %s failure: %s", f.Kind, f.Message)
	case f.Err != nil:
		return fmt.Sprintf("transcription %s failure: %v", f.Kind, f.Err)
	default:
		return fmt.Sprintf("transcription %s failure", f.Kind)
	}
}

func (f *Failure) Unwrap() error { return f.Err }
