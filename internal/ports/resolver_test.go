package ports

import (
	"context"
	"testing"

	"mcpanel/internal/domain"
)

func summary(id, name, port, status string) domain.ServerSummary {
	return domain.ServerSummary{ID: id, Name: name, Port: port, Status: status}
}

func TestFindConflict(t *testing.T) {
	x := summary("x", "Survival", "25565", domain.StatusRunning)
	y := summary("y", "Creative", "25565", domain.StatusStopped)
	z := summary("z", "Modded", "25566", domain.StatusStopped)
	all := []domain.ServerSummary{x, y, z}

	conflict := FindConflict(y, all)
	if conflict == nil {
		t.Fatal("expected a conflict for y on port 25565")
	}
	if conflict.Conflicting.ID != "x" || conflict.Current.ID != "y" {
		t.Errorf("unexpected conflict pairing: %+v", conflict)
	}

	if c := FindConflict(z, all); c != nil {
		t.Errorf("z has a free port, got conflict %+v", c)
	}

	// The candidate never conflicts with itself.
	if c := FindConflict(x, all); c != nil {
		t.Errorf("x should not conflict with itself, got %+v", c)
	}
}

func TestFindConflictIgnoresNonRunning(t *testing.T) {
	a := summary("a", "A", "25565", domain.StatusStopping)
	b := summary("b", "B", "25565", domain.StatusStopped)
	if c := FindConflict(b, []domain.ServerSummary{a, b}); c != nil {
		t.Errorf("only running servers hold their port, got %+v", c)
	}
}

func TestValidatePort(t *testing.T) {
	cases := []struct {
		port  string
		valid bool
	}{
		{"", false},
		{"abc", false},
		{"1023", false},
		{"1024", true},
		{"25565", true},
		{"65535", true},
		{"65536", false},
		{"-1", false},
	}
	for _, tc := range cases {
		err := ValidatePort(tc.port)
		if tc.valid && err != nil {
			t.Errorf("ValidatePort(%q) = %v, want nil", tc.port, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("ValidatePort(%q) = nil, want error", tc.port)
		}
	}
}

func TestCanChangePort(t *testing.T) {
	if CanChangePort("25565", "") {
		t.Error("empty proposal must be rejected")
	}
	if CanChangePort("25565", "25565") {
		t.Error("unchanged proposal must be rejected")
	}
	if !CanChangePort("25565", "25566") {
		t.Error("a different non-empty proposal must be accepted")
	}
}

type fakeBackend struct {
	calls     []string
	failStop  error
	failStart error
}

func (f *fakeBackend) UpdatePort(ctx context.Context, id, port string) error {
	f.calls = append(f.calls, "update:"+id+":"+port)
	return nil
}

func (f *fakeBackend) Stop(ctx context.Context, id string) error {
	f.calls = append(f.calls, "stop:"+id)
	return f.failStop
}

func (f *fakeBackend) StartUnchecked(ctx context.Context, id string) error {
	f.calls = append(f.calls, "start:"+id)
	return f.failStart
}

func testConflict() Conflict {
	return Conflict{
		Current:     summary("y", "Creative", "25565", domain.StatusStopped),
		Conflicting: summary("x", "Survival", "25565", domain.StatusRunning),
	}
}

func TestChangePortPersistsThenRetriesStart(t *testing.T) {
	backend := &fakeBackend{}
	r := NewResolver(backend)

	if err := r.ChangePort(context.Background(), testConflict(), "25566"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"update:y:25566", "start:y"}
	if len(backend.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", backend.calls, want)
	}
	for i := range want {
		if backend.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, backend.calls[i], want[i])
		}
	}
}

func TestChangePortValidatesBeforeAnyCall(t *testing.T) {
	backend := &fakeBackend{}
	r := NewResolver(backend)

	for _, proposed := range []string{"", "25565", "80", "not-a-port"} {
		if err := r.ChangePort(context.Background(), testConflict(), proposed); err == nil {
			t.Errorf("ChangePort(%q) should fail", proposed)
		}
	}
	if len(backend.calls) != 0 {
		t.Errorf("no backend call expected for invalid input, got %v", backend.calls)
	}
}

func TestStopConflictingThenRetriesStart(t *testing.T) {
	backend := &fakeBackend{}
	r := NewResolver(backend)

	if err := r.StopConflicting(context.Background(), testConflict()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"stop:x", "start:y"}
	if len(backend.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", backend.calls, want)
	}
	for i := range want {
		if backend.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, backend.calls[i], want[i])
		}
	}
}

func TestStopConflictingFailureSkipsRetry(t *testing.T) {
	backend := &fakeBackend{failStop: context.DeadlineExceeded}
	r := NewResolver(backend)

	if err := r.StopConflicting(context.Background(), testConflict()); err == nil {
		t.Fatal("expected error")
	}
	if len(backend.calls) != 1 {
		t.Errorf("start must not run after a failed stop, calls = %v", backend.calls)
	}
}
