package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const (
	defaultSarvamEndpoint = "https://api.sarvam.ai/v1/audio/transcribe"
	defaultSourceLang     = "hi-IN"
	defaultTaskType       = "transcribe"

	// per-attempt cap so a hung call cannot stall a segment forever
	defaultAttemptTimeout = 120 * time.Second

	// error bodies are truncated before being carried in failures
	maxErrorBody = 2048
)

// Sarvam sends one segment per call to the Sarvam speech API.
type Sarvam struct {
	APIKey     string
	Endpoint   string
	SourceLang string
	TaskType   string

	hc *http.Client
}

func NewSarvam(apiKey string) *Sarvam {
	return &Sarvam{
		APIKey:     apiKey,
		Endpoint:   defaultSarvamEndpoint,
		SourceLang: defaultSourceLang,
		TaskType:   defaultTaskType,
		hc:         &http.Client{Timeout: defaultAttemptTimeout},
	}
}

type sarvamRequest struct {
	Audio       string `json:"audio"` // base64 WAV
	SourceLang  string `json:"source_lang"`
	TaskType    string `json:"task_type"`
	AudioFormat string `json:"audio_format"`
}

type sarvamResponse struct {
	Text string `json:"text"`
}

func (s *Sarvam) Close() error { return nil }

// Transcribe performs exactly one network attempt. Failures come back
// classified so Retrying can decide backoff and the terminal report.
func (s *Sarvam) Transcribe(ctx context.Context, wav []byte) (string, error) {
	body, err := json.Marshal(sarvamRequest{
		Audio:       base64.StdEncoding.EncodeToString(wav),
		SourceLang:  s.SourceLang,
		TaskType:    s.TaskType,
		AudioFormat: "wav",
	})
	if err != nil {
		return "", &Failure{Kind: FailureParse, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &Failure{Kind: FailureRateLimited, Message: "rate limited by speech service"}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &Failure{Kind: FailureService, Message: "speech service returned " + resp.Status + ": " + truncate(respBody, maxErrorBody)}
	}

	var out sarvamResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &Failure{Kind: FailureParse, Message: "unparseable response body", Err: err}
	}
	return out.Text, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
