package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mcpanel/internal/domain"
	"mcpanel/internal/ports"
	"mcpanel/pkg/sdk"
)

const DefaultPollInterval = 5 * time.Second

// LogSink receives error entries produced by failed commands so the console
// view can surface them.
type LogSink func(serverID string, entry domain.LogEntry)

// Controller issues lifecycle commands and mirrors the backend's status. The
// mirror is a cache: it is refreshed on a fixed interval and immediately
// after every issued command, and a failed command never mutates it.
type Controller struct {
	client       *sdk.Client
	pollInterval time.Duration
	sink         LogSink

	mu      sync.Mutex
	servers map[string]domain.ServerSummary
	order   []string
}

func NewController(client *sdk.Client) *Controller {
	return &Controller{
		client:       client,
		pollInterval: DefaultPollInterval,
		servers:      make(map[string]domain.ServerSummary),
	}
}

func (c *Controller) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

func (c *Controller) SetLogSink(sink LogSink) {
	c.sink = sink
}

// Run polls the backend until ctx is cancelled. Poll failures are transient:
// the mirror keeps its last-known values and the next tick retries.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh replaces the mirror with the backend's authoritative listing.
func (c *Controller) Refresh(ctx context.Context) error {
	listed, err := c.client.ListServers(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.servers = make(map[string]domain.ServerSummary, len(listed))
	c.order = c.order[:0]
	for _, s := range listed {
		summary := toSummary(s)
		c.servers[summary.ID] = summary
		c.order = append(c.order, summary.ID)
	}
	return nil
}

// Servers returns a snapshot of the mirror in listing order.
func (c *Controller) Servers() []domain.ServerSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ServerSummary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.servers[id])
	}
	return out
}

func (c *Controller) Get(id string) (domain.ServerSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.servers[id]
	return s, ok
}

// Start gates the request on the port conflict scan. When a conflict is
// found the command is not issued and the conflict is returned for the
// caller to resolve.
func (c *Controller) Start(ctx context.Context, id string) (*ports.Conflict, error) {
	candidate, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown server %q", id)
	}
	if candidate.Status != domain.StatusStopped {
		return nil, fmt.Errorf("%s is %s, not stopped", candidate.Name, candidate.Status)
	}
	if conflict := ports.FindConflict(candidate, c.Servers()); conflict != nil {
		return conflict, nil
	}
	return nil, c.command(ctx, id, domain.ActionStart)
}

// StartUnchecked issues a start without the conflict gate. The resolver uses
// it to retry a start it has already cleared.
func (c *Controller) StartUnchecked(ctx context.Context, id string) error {
	return c.command(ctx, id, domain.ActionStart)
}

func (c *Controller) Stop(ctx context.Context, id string) error {
	return c.command(ctx, id, domain.ActionStop)
}

// Restart is only honored for a running server.
func (c *Controller) Restart(ctx context.Context, id string) error {
	s, ok := c.Get(id)
	if !ok {
		return fmt.Errorf("unknown server %q", id)
	}
	if s.Status != domain.StatusRunning {
		return fmt.Errorf("%s is %s; restart requires a running server", s.Name, s.Status)
	}
	return c.command(ctx, id, domain.ActionRestart)
}

// ForceStop bypasses graceful shutdown. It is rejected locally when the
// server is already stopped, before any network call.
func (c *Controller) ForceStop(ctx context.Context, id string) error {
	s, ok := c.Get(id)
	if !ok {
		return fmt.Errorf("unknown server %q", id)
	}
	if s.Status == domain.StatusStopped {
		return fmt.Errorf("%s is already stopped", s.Name)
	}
	return c.command(ctx, id, domain.ActionForceStop)
}

// UpdatePort persists a new port through the backend's properties endpoint.
func (c *Controller) UpdatePort(ctx context.Context, id, port string) error {
	return c.client.UpdateProperties(ctx, id, map[string]string{"server-port": port})
}

func (c *Controller) command(ctx context.Context, id, action string) error {
	result, err := c.client.Control(ctx, id, action, uuid.NewString())
	if err == nil && !result.Success {
		err = fmt.Errorf("backend rejected %s: %s", action, result.Message)
	}
	if err != nil {
		// Surface the failure; the cached status stays untouched and the
		// next poll remains the source of truth.
		c.report(id, err)
		return err
	}

	c.Refresh(ctx)
	return nil
}

func (c *Controller) report(serverID string, err error) {
	if c.sink == nil {
		return
	}
	c.sink(serverID, domain.LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Type:      domain.LogError,
		Content:   err.Error(),
	})
}

func toSummary(s sdk.Server) domain.ServerSummary {
	return domain.ServerSummary{
		ID:      s.ID,
		Name:    s.Name,
		MOTD:    s.MOTD,
		Status:  s.Status,
		Players: domain.PlayerCount{Online: s.Players.Online, Max: s.Players.Max},
		Version: s.Version,
		Port:    s.Port,
	}
}
