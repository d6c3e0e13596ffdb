package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sseServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, l := range lines {
			fmt.Fprintf(w, "%s\n\n", l)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
}

func deltaLine(text string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`, text)
}

func TestStream_AccumulatesChunks(t *testing.T) {
	srv := sseServer(t,
		`: keep-alive`,
		deltaLine("feat"),
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		deltaLine(": add "),
		`data: {not json`,
		deltaLine("parser"),
		`data: {"choices":[],"usage":{"prompt_tokens":50,"completion_tokens":5,"total_tokens":55,"prompt_tokens_details":{"cached_tokens":10}}}`,
		`data: [DONE]`,
		deltaLine("ignored"),
	)
	defer srv.Close()

	rec := &recordingRecorder{}
	c := newTestClient(t, srv, WithUsageRecorder(rec))

	var chunks []string
	res, err := c.Stream(context.Background(), nil, func(s string) { chunks = append(chunks, s) }, CallOptions{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if res.Content != "feat: add parser" {
		t.Errorf("Content = %q", res.Content)
	}
	if strings.Join(chunks, "|") != "feat|: add |parser" {
		t.Errorf("chunks = %q", chunks)
	}
	if res.Interrupted {
		t.Error("Interrupted should be false on normal completion")
	}
	want := Usage{PromptTokens: 50, CompletionTokens: 5, TotalTokens: 55, CachedTokens: 10}
	if res.Usage == nil || *res.Usage != want {
		t.Errorf("Usage = %+v, want %+v", res.Usage, want)
	}
	if calls := rec.all(); len(calls) != 1 || calls[0] != want {
		t.Errorf("recorder calls = %+v", calls)
	}
}

func TestStream_RequestsUsage(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.Stream(context.Background(), nil, nil, CallOptions{}); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if !strings.Contains(body, `"stream":true`) || !strings.Contains(body, `"include_usage":true`) {
		t.Errorf("request body = %s", body)
	}
}

func TestStream_CancelStopsDelivery(t *testing.T) {
	srv := sseServer(t,
		deltaLine("a"),
		deltaLine("b"),
		deltaLine("c"),
		deltaLine("d"),
		deltaLine("e"),
		`data: {"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`,
		`data: [DONE]`,
	)
	defer srv.Close()

	rec := &recordingRecorder{}
	c := newTestClient(t, srv, WithUsageRecorder(rec))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var chunks []string
	res, err := c.Stream(ctx, nil, func(s string) {
		chunks = append(chunks, s)
		if len(chunks) == 2 {
			cancel()
		}
	}, CallOptions{})
	if err != nil {
		t.Fatalf("Stream after cancel returned error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("delivered %d chunks, want 2", len(chunks))
	}
	if res.Content != "ab" {
		t.Errorf("Content = %q, want %q", res.Content, "ab")
	}
	if !res.Interrupted {
		t.Error("Interrupted should be set")
	}
	if len(rec.all()) != 0 {
		t.Error("usage must not be recorded for an interrupted stream")
	}
}

func TestStream_TimeoutReturnsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "%s\n\n", deltaLine("partial"))
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.Stream(context.Background(), nil, nil, CallOptions{MaxWait: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if res.Content != "partial" || !res.Interrupted {
		t.Errorf("res = %+v", res)
	}
}

func TestStream_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	called := false
	_, err := c.Stream(context.Background(), nil, func(string) { called = true }, CallOptions{})
	if Classify(err) != KindRateLimit {
		t.Fatalf("err = %v, want rate limit", err)
	}
	if called {
		t.Error("onChunk must not be called on status error")
	}
}
