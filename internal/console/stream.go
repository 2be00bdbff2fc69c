package console

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"mcpanel/internal/domain"
	"mcpanel/pkg/sdk"
)

const (
	DefaultBacklogLimit   = 100
	DefaultReconnectDelay = 5 * time.Second
)

// EntriesEvent carries entries newly merged into the store, in append order.
type EntriesEvent struct {
	Entries []domain.LogEntry
}

// ErrorEvent reports a failed fetch or a dropped feed. Reconnecting is true
// when the client will retry on its own after the backoff.
type ErrorEvent struct {
	Err          error
	Reconnecting bool
}

// Event is either an EntriesEvent or an ErrorEvent.
type Event interface{}

// StreamClient maintains a live, deduplicated console view for one server:
// a one-shot backlog fetch, then a long-lived event feed resumed from the
// store's cursor, reconnecting after a fixed delay for as long as the context
// lives. Cancelling the context tears the feed down and suppresses any
// pending reconnect.
type StreamClient struct {
	client         *sdk.Client
	serverID       string
	store          *Store
	events         chan Event
	backlogLimit   int
	reconnectDelay time.Duration
}

func NewStreamClient(client *sdk.Client, serverID string) *StreamClient {
	return &StreamClient{
		client:         client,
		serverID:       serverID,
		store:          NewStore(),
		events:         make(chan Event, 64),
		backlogLimit:   DefaultBacklogLimit,
		reconnectDelay: DefaultReconnectDelay,
	}
}

// SetReconnectDelay overrides the fixed backoff. Must be called before Run.
func (sc *StreamClient) SetReconnectDelay(d time.Duration) {
	sc.reconnectDelay = d
}

// Store returns the log buffer. Only the Run goroutine writes to it;
// subscribers should consume entries through Events instead.
func (sc *StreamClient) Store() *Store {
	return sc.store
}

// Events delivers merged entries and failures. The channel is closed when
// Run returns.
func (sc *StreamClient) Events() <-chan Event {
	return sc.events
}

// Run blocks until ctx is cancelled. Reconnection is the steady state: feed
// errors are reported, then the feed is reopened from the last merged
// timestamp so nothing already rendered is lost or duplicated.
func (sc *StreamClient) Run(ctx context.Context) {
	defer close(sc.events)

	sc.fetchBacklog(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		err := sc.consumeFeed(ctx)
		if ctx.Err() != nil {
			return
		}
		sc.emit(ctx, ErrorEvent{Err: err, Reconnecting: true})

		select {
		case <-ctx.Done():
			return
		case <-time.After(sc.reconnectDelay):
		}
	}
}

// fetchBacklog seeds the store with recent history. Failure is reported but
// does not block the live feed.
func (sc *StreamClient) fetchBacklog(ctx context.Context) {
	page, err := sc.client.GetConsole(ctx, sc.serverID, sc.backlogLimit)
	if err != nil {
		sc.emit(ctx, ErrorEvent{Err: err})
		return
	}
	if appended := sc.store.Append(toDomainEntries(page.Logs)); len(appended) > 0 {
		sc.emit(ctx, EntriesEvent{Entries: appended})
	}
}

// consumeFeed opens the live feed from the resume cursor and merges batches
// until the stream errors or ends.
func (sc *StreamClient) consumeFeed(ctx context.Context) error {
	resp, err := sc.client.OpenConsoleStream(ctx, sc.serverID, sc.store.LastTimestamp())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fr := NewFrameReader(resp.Body)
	for {
		frame, err := fr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("console stream closed")
			}
			return err
		}
		if frame.Event == "error" {
			return errors.New("console stream terminated upstream: " + frame.Data)
		}

		var batch sdk.LogBatch
		if err := json.Unmarshal([]byte(frame.Data), &batch); err != nil {
			// Malformed frame: skip it, keep the feed alive.
			continue
		}
		if appended := sc.store.Append(toDomainEntries(batch.Logs)); len(appended) > 0 {
			sc.emit(ctx, EntriesEvent{Entries: appended})
		}
	}
}

func (sc *StreamClient) emit(ctx context.Context, ev Event) {
	select {
	case sc.events <- ev:
	case <-ctx.Done():
	}
}

func toDomainEntries(logs []sdk.LogEntry) []domain.LogEntry {
	if len(logs) == 0 {
		return nil
	}
	entries := make([]domain.LogEntry, len(logs))
	for i, l := range logs {
		entries[i] = domain.LogEntry(l)
	}
	return entries
}
