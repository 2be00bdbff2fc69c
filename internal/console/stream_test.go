package console

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/pkg/sdk"
)

type streamBackend struct {
	mu          sync.Mutex
	sinceValues []string
}

func (b *streamBackend) recordSince(since string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinceValues = append(b.sinceValues, since)
	return len(b.sinceValues) - 1
}

func (b *streamBackend) sinces() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sinceValues...)
}

func logsJSON(entries ...[2]string) string {
	out := `{"logs":[`
	for i, e := range entries {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"timestamp":%q,"type":"info","content":%q}`, e[0], e[1])
	}
	return out + `]}`
}

// The backend serves a 2-entry backlog; the first feed connection replays
// entry 2 and delivers 3, then drops; the reconnect delivers 4 and holds.
func newStreamTestServer(t *testing.T, backend *streamBackend) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/servers/s1/console", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"logs":[{"timestamp":"1","type":"info","content":"a"},{"timestamp":"2","type":"info","content":"b"}],"lastTimestamp":"2"}`)
	})

	mux.HandleFunc("GET /api/servers/s1/console/stream", func(w http.ResponseWriter, r *http.Request) {
		call := backend.recordSince(r.URL.Query().Get("since"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		if call == 0 {
			fmt.Fprintf(w, "data: %s\n\n", logsJSON([2]string{"2", "b"}, [2]string{"3", "c"}))
			flusher.Flush()
			return
		}

		fmt.Fprintf(w, "data: %s\n\n", logsJSON([2]string{"4", "d"}))
		flusher.Flush()
		<-r.Context().Done()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func collectEntries(t *testing.T, events <-chan Event, want int) []domain.LogEntry {
	t.Helper()
	var got []domain.LogEntry
	deadline := time.After(5 * time.Second)
	for len(got) < want {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("events closed early, got %d of %d entries", len(got), want)
			}
			if entries, isEntries := ev.(EntriesEvent); isEntries {
				got = append(got, entries.Entries...)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for entries, got %d of %d", len(got), want)
		}
	}
	return got
}

func TestStreamClientResumesWithoutDuplication(t *testing.T) {
	backend := &streamBackend{}
	srv := newStreamTestServer(t, backend)

	sc := NewStreamClient(sdk.NewClient(srv.URL), "s1")
	sc.SetReconnectDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sc.Run(ctx)

	got := collectEntries(t, sc.Events(), 4)

	wantContents := []string{"a", "b", "c", "d"}
	for i, want := range wantContents {
		if got[i].Content != want {
			t.Errorf("entry %d: got %q, want %q", i, got[i].Content, want)
		}
	}

	sinces := backend.sinces()
	if len(sinces) < 2 {
		t.Fatalf("expected at least 2 feed connections, got %d", len(sinces))
	}
	if sinces[0] != "2" {
		t.Errorf("first connection should resume from backlog cursor 2, got %q", sinces[0])
	}
	if sinces[1] != "3" {
		t.Errorf("reconnect should resume from last merged timestamp 3, got %q", sinces[1])
	}
}

func TestStreamClientReportsReconnect(t *testing.T) {
	backend := &streamBackend{}
	srv := newStreamTestServer(t, backend)

	sc := NewStreamClient(sdk.NewClient(srv.URL), "s1")
	sc.SetReconnectDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sc.Run(ctx)

	sawReconnect := false
	deadline := time.After(5 * time.Second)
	for !sawReconnect {
		select {
		case ev, ok := <-sc.Events():
			if !ok {
				t.Fatal("events closed before a reconnect was reported")
			}
			if errEv, isErr := ev.(ErrorEvent); isErr && errEv.Reconnecting {
				sawReconnect = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for reconnect event")
		}
	}
}

func TestStreamClientCancellationSuppressesReconnect(t *testing.T) {
	backend := &streamBackend{}
	srv := newStreamTestServer(t, backend)

	sc := NewStreamClient(sdk.NewClient(srv.URL), "s1")
	// Long delay: cancellation lands while the reconnect timer is pending.
	sc.SetReconnectDelay(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sc.Run(ctx)
		close(done)
	}()

	// Wait for the first feed connection to come and go.
	deadline := time.Now().Add(5 * time.Second)
	for len(backend.sinces()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	connections := len(backend.sinces())
	time.Sleep(50 * time.Millisecond)
	if got := len(backend.sinces()); got != connections {
		t.Errorf("feed reopened after teardown: %d -> %d connections", connections, got)
	}
}

func TestStreamClientBacklogFailureIsNonFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/servers/s1/console", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "backend down"}`, http.StatusBadGateway)
	})
	mux.HandleFunc("GET /api/servers/s1/console/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprintf(w, "data: %s\n\n", logsJSON([2]string{"1", "live"}))
		flusher.Flush()
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sc := NewStreamClient(sdk.NewClient(srv.URL), "s1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sc.Run(ctx)

	deadline := time.After(5 * time.Second)
	sawError := false
	for {
		select {
		case ev, ok := <-sc.Events():
			if !ok {
				t.Fatal("events closed early")
			}
			switch typed := ev.(type) {
			case ErrorEvent:
				sawError = true
			case EntriesEvent:
				if !sawError {
					t.Error("expected the backlog failure to be reported before live entries")
				}
				if typed.Entries[0].Content != "live" {
					t.Errorf("unexpected live entry: %+v", typed.Entries[0])
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for live entry")
		}
	}
}

func TestStreamClientSkipsMalformedFrames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/servers/s1/console", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"logs":[],"lastTimestamp":""}`)
	})
	mux.HandleFunc("GET /api/servers/s1/console/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {broken\n\n")
		fmt.Fprintf(w, "data: %s\n\n", logsJSON([2]string{"1", "good"}))
		flusher.Flush()
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sc := NewStreamClient(sdk.NewClient(srv.URL), "s1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sc.Run(ctx)

	got := collectEntries(t, sc.Events(), 1)
	if got[0].Content != "good" {
		t.Errorf("expected the malformed frame to be skipped, got %+v", got[0])
	}
}
