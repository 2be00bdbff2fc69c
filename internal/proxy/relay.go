package proxy

import (
	"encoding/json"
	"log"
	"net/http"

	"mcpanel/internal/console"
	"mcpanel/pkg/sdk"
)

// Relay adapts the backend's push stream into the panel-facing event channel:
// one upstream connection per subscriber, each upstream frame re-emitted with
// the same JSON payload, boundaries and order preserved. The relay never
// retries; reconnection belongs to the stream client above it.
type Relay struct {
	backend *sdk.Client
}

func NewRelay(backend *sdk.Client) *Relay {
	return &Relay{backend: backend}
}

// ServeConsoleStream subscribes the caller to a server's live feed, resuming
// from the optional since cursor. On upstream failure the client channel is
// terminated with an error frame. Malformed upstream payloads are logged and
// skipped without dropping the channel.
func (rl *Relay) ServeConsoleStream(w http.ResponseWriter, r *http.Request, serverID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	since := r.URL.Query().Get("since")
	upstream, err := rl.backend.OpenConsoleStream(r.Context(), serverID, since)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	defer upstream.Body.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	fr := console.NewFrameReader(upstream.Body)
	for {
		frame, err := fr.Next()
		if err != nil {
			if r.Context().Err() != nil {
				return
			}
			// Upstream dropped: signal the subscriber and close. The
			// subscriber decides whether to reconnect.
			console.WriteFrame(w, console.Frame{Event: "error", Data: `{"error": "upstream stream closed"}`})
			flusher.Flush()
			return
		}

		if !json.Valid([]byte(frame.Data)) {
			log.Printf("relay: skipping malformed frame for server %s", serverID)
			continue
		}

		if err := console.WriteFrame(w, frame); err != nil {
			return
		}
		flusher.Flush()
	}
}
