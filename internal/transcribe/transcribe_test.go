package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/whisapp/whis-desktop/internal/audio"
)

func shortRecording() *audio.Recording {
	return &audio.Recording{Samples: make([]float32, audio.SampleRate), SampleRate: audio.SampleRate}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model field = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file field: %v", err)
		}
		defer file.Close()
		if header.Filename != "recording.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		head := make([]byte, 4)
		file.Read(head)
		if string(head) != "RIFF" {
			t.Errorf("upload is not a WAV file, starts with %q", head)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "  hello world \n"})
	}))
	defer srv.Close()

	c := New("sk-test", "whisper-1", WithEndpoint(srv.URL))
	text, err := c.Transcribe(context.Background(), shortRecording())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q (trimmed)", text, "hello world")
	}
}

func TestTranscribeSendsLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language field = %q, want en", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer srv.Close()

	c := New("sk-test", "whisper-1", WithEndpoint(srv.URL), WithLanguage("en"))
	if _, err := c.Transcribe(context.Background(), shortRecording()); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}

func TestTranscribeNoAPIKey(t *testing.T) {
	c := New("", "whisper-1")
	if _, err := c.Transcribe(context.Background(), shortRecording()); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided"}}`)
	}))
	defer srv.Close()

	c := New("sk-bad", "whisper-1", WithEndpoint(srv.URL))
	_, err := c.Transcribe(context.Background(), shortRecording())
	if err == nil {
		t.Fatal("Transcribe succeeded, want error")
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("error %q does not surface the API message", err)
	}
}

func TestTranscribeChunksConcatenateInOrder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"text": fmt.Sprintf("part%d", n)})
	}))
	defer srv.Close()

	// Three chunk lengths at a tiny sample rate so the buffers stay small.
	const rate = 4
	rec := &audio.Recording{Samples: make([]float32, rate*600*3), SampleRate: rate}

	c := New("sk-test", "whisper-1", WithEndpoint(srv.URL))
	text, err := c.Transcribe(context.Background(), rec)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("made %d requests, want 3", calls.Load())
	}
	// Responses arrive in request order here since the handler is serial, so
	// the joined text must preserve take order.
	words := strings.Fields(text)
	if len(words) != 3 {
		t.Fatalf("joined text = %q, want 3 parts", text)
	}
}
