package genai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sseBody(chunks ...string) string {
	var b strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&b, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", c)
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	t.Setenv("WAYFINDER_TEST_KEY", "test-key")
	c, err := NewClient(Config{BaseURL: baseURL, APIKeyEnv: "WAYFINDER_TEST_KEY", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("WAYFINDER_EMPTY_KEY", "")
	if _, err := NewClient(Config{APIKeyEnv: "WAYFINDER_EMPTY_KEY"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestStream_DeliversChunksInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseBody("Hello ", "world"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var got []string
	err := c.Stream(context.Background(), "prompt", func(text string) error {
		got = append(got, text)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Join(got, "") != "Hello world" {
		t.Errorf("chunks = %v", got)
	}
}

func TestStream_RetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sseBody("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var out string
	if err := c.Stream(context.Background(), "prompt", func(text string) error {
		out += text
		return nil
	}); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if calls != 2 || out != "ok" {
		t.Errorf("calls = %d, out = %q", calls, out)
	}
}

func TestStream_ClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Stream(context.Background(), "prompt", func(string) error { return nil })
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStream_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"first\"}}]}\n\n")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, srv.URL)
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Stream(ctx, "prompt", func(text string) error {
			cancel()
			return nil
		})
	}()
	select {
	case err := <-errCh:
		if err == nil || ctx.Err() == nil {
			t.Errorf("expected cancellation error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after cancellation")
	}
}

func TestStream_OnChunkErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseBody("a", "b", "c"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	wantErr := fmt.Errorf("stop here")
	var seen int
	err := c.Stream(context.Background(), "prompt", func(string) error {
		seen++
		if seen == 2 {
			return wantErr
		}
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "stop here") {
		t.Errorf("err = %v, want wrapped stop error", err)
	}
	if seen != 2 {
		t.Errorf("saw %d chunks, want 2", seen)
	}
}
