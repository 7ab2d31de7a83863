package stt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sarvamFor(ts *httptest.Server) *Sarvam {
	s := NewSarvam("test-key")
	s.Endpoint = ts.URL
	return s
}

func TestSarvamRequestShape(t *testing.T) {
	wav := []byte("RIFFfakewavbytes")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		var req sarvamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil || string(decoded) != string(wav) {
			t.Errorf("audio field did not round-trip")
		}
		if req.SourceLang != "hi-IN" || req.TaskType != "transcribe" || req.AudioFormat != "wav" {
			t.Errorf("unexpected fields: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "नमस्ते"})
	}))
	defer ts.Close()

	got, err := sarvamFor(ts).Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if got != "नमस्ते" {
		t.Fatalf("got %q", got)
	}
}

func TestSarvamRateLimitClassification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := sarvamFor(ts).Transcribe(context.Background(), nil)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureRateLimited {
		t.Fatalf("err = %v, want rate_limited", err)
	}
}

func TestSarvamServiceFailureCarriesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer ts.Close()

	_, err := sarvamFor(ts).Transcribe(context.Background(), nil)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureService {
		t.Fatalf("err = %v, want service failure", err)
	}
	if !strings.Contains(f.Message, "upstream exploded") {
		t.Fatalf("message %q does not carry the response body", f.Message)
	}
}

func TestSarvamUnparseableBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	_, err := sarvamFor(ts).Transcribe(context.Background(), nil)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureParse {
		t.Fatalf("err = %v, want parse failure", err)
	}
}

func TestSarvamTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening

	_, err := sarvamFor(ts).Transcribe(context.Background(), nil)
	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureTransport {
		t.Fatalf("err = %v, want transport failure", err)
	}
}

func TestSarvamExhaustsRetryBudgetOnRepeatedRateLimit(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	r, _ := retrying(sarvamFor(ts))
	_, err := r.Transcribe(context.Background(), nil)

	var f *Failure
	if !errors.As(err, &f) || f.Kind != FailureRateLimited {
		t.Fatalf("err = %v, want rate_limited after exhaustion", err)
	}
	if hits != MaxAttempts {
		t.Fatalf("server saw %d attempts, want %d", hits, MaxAttempts)
	}
}
