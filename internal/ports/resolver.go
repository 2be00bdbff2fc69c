package ports

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mcpanel/internal/domain"
)

const (
	MinPort = 1024
	MaxPort = 65535
)

var ErrPortUnchanged = errors.New("new port must differ from the current port")

// Conflict records a port collision discovered while gating a start request.
type Conflict struct {
	Current     domain.ServerSummary `json:"current"`
	Conflicting domain.ServerSummary `json:"conflicting"`
}

// ConflictState is the dialog state shown while a conflict awaits resolution.
type ConflictState struct {
	IsOpen      bool
	Current     domain.ServerSummary
	Conflicting domain.ServerSummary
}

func OpenConflict(c Conflict) ConflictState {
	return ConflictState{IsOpen: true, Current: c.Current, Conflicting: c.Conflicting}
}

// FindConflict scans known servers for one that is already active on the
// candidate's port. The candidate itself is excluded. This is the only port
// check performed; the OS is never consulted.
func FindConflict(candidate domain.ServerSummary, all []domain.ServerSummary) *Conflict {
	for _, other := range all {
		if other.ID == candidate.ID {
			continue
		}
		if other.Port == candidate.Port && other.Status == domain.StatusRunning {
			return &Conflict{Current: candidate, Conflicting: other}
		}
	}
	return nil
}

// ValidatePort checks that a proposed port is numeric and inside the
// unprivileged range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New("port is required")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port %q", port)
	}
	if n < MinPort || n > MaxPort {
		return fmt.Errorf("port must be between %d and %d", MinPort, MaxPort)
	}
	return nil
}

// CanChangePort gates the change-port action: the proposed value must be
// non-empty and differ from the current port.
func CanChangePort(current, proposed string) bool {
	return proposed != "" && proposed != current
}

// Backend is the slice of the lifecycle surface the resolver needs to apply a
// remediation and retry the start that was blocked. StartUnchecked skips the
// conflict gate the resolver has already cleared.
type Backend interface {
	UpdatePort(ctx context.Context, serverID, port string) error
	Stop(ctx context.Context, serverID string) error
	StartUnchecked(ctx context.Context, serverID string) error
}

// Resolver applies one of the two remediations for a conflict. Both paths
// re-issue the blocked start once the remediation has succeeded.
type Resolver struct {
	backend Backend
}

func NewResolver(backend Backend) *Resolver {
	return &Resolver{backend: backend}
}

// ChangePort persists a new port for the blocked server, then retries its
// start. The value is validated before any network call.
func (r *Resolver) ChangePort(ctx context.Context, c Conflict, newPort string) error {
	if !CanChangePort(c.Current.Port, newPort) {
		return ErrPortUnchanged
	}
	if err := ValidatePort(newPort); err != nil {
		return err
	}
	if err := r.backend.UpdatePort(ctx, c.Current.ID, newPort); err != nil {
		return fmt.Errorf("updating port: %w", err)
	}
	if err := r.backend.StartUnchecked(ctx, c.Current.ID); err != nil {
		return fmt.Errorf("starting %s after port change: %w", c.Current.Name, err)
	}
	return nil
}

// StopConflicting stops the server holding the port, then retries the
// blocked start.
func (r *Resolver) StopConflicting(ctx context.Context, c Conflict) error {
	if err := r.backend.Stop(ctx, c.Conflicting.ID); err != nil {
		return fmt.Errorf("stopping %s: %w", c.Conflicting.Name, err)
	}
	if err := r.backend.StartUnchecked(ctx, c.Current.ID); err != nil {
		return fmt.Errorf("starting %s after stopping %s: %w", c.Current.Name, c.Conflicting.Name, err)
	}
	return nil
}
