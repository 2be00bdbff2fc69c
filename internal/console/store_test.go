package console

import (
	"fmt"
	"testing"

	"mcpanel/internal/domain"
)

func entry(ts, content string) domain.LogEntry {
	return domain.LogEntry{Timestamp: ts, Type: domain.LogInfo, Content: content}
}

func TestStoreAppendDeduplicates(t *testing.T) {
	s := NewStore()

	first := s.Append([]domain.LogEntry{entry("1", "a")})
	if len(first) != 1 {
		t.Fatalf("expected 1 appended entry, got %d", len(first))
	}

	// Replay of entry 1 alongside a new entry 2.
	second := s.Append([]domain.LogEntry{entry("1", "a"), entry("2", "b")})
	if len(second) != 1 {
		t.Fatalf("expected 1 appended entry on replay, got %d", len(second))
	}
	if second[0].Content != "b" {
		t.Errorf("expected appended entry b, got %q", second[0].Content)
	}

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected store of 2, got %d", len(entries))
	}
	if entries[0].Content != "a" || entries[1].Content != "b" {
		t.Errorf("unexpected store order: %v", entries)
	}
}

func TestStoreSameTimestampDifferentContent(t *testing.T) {
	s := NewStore()
	appended := s.Append([]domain.LogEntry{entry("1", "a"), entry("1", "b")})
	if len(appended) != 2 {
		t.Errorf("entries sharing a timestamp but not content must both be kept, got %d", len(appended))
	}
}

func TestStoreCapacityEvictsOldestFirst(t *testing.T) {
	s := NewStoreWithCapacity(5)

	var batch []domain.LogEntry
	for i := 0; i < 8; i++ {
		batch = append(batch, entry(fmt.Sprintf("%02d", i), fmt.Sprintf("line %d", i)))
	}
	s.Append(batch)

	if s.Len() != 5 {
		t.Fatalf("expected capacity of 5, got %d", s.Len())
	}
	entries := s.Entries()
	if entries[0].Timestamp != "03" {
		t.Errorf("expected oldest surviving entry 03, got %s", entries[0].Timestamp)
	}
	if entries[4].Timestamp != "07" {
		t.Errorf("expected newest entry 07, got %s", entries[4].Timestamp)
	}
}

func TestStoreEvictionFreesDedupKeys(t *testing.T) {
	s := NewStoreWithCapacity(2)
	s.Append([]domain.LogEntry{entry("1", "a"), entry("2", "b"), entry("3", "c")})

	// Entry 1 was evicted, so appending it again is a fresh append.
	appended := s.Append([]domain.LogEntry{entry("1", "a")})
	if len(appended) != 1 {
		t.Errorf("expected evicted entry to be appendable again, got %d appended", len(appended))
	}
}

func TestStoreResumeCursor(t *testing.T) {
	s := NewStore()
	if s.LastTimestamp() != "" {
		t.Errorf("empty store should have empty cursor, got %q", s.LastTimestamp())
	}

	s.Append([]domain.LogEntry{entry("1", "a"), entry("2", "b")})
	if s.LastTimestamp() != "2" {
		t.Errorf("expected cursor 2, got %q", s.LastTimestamp())
	}

	// A replayed (deduplicated) batch must not move the cursor backwards.
	s.Append([]domain.LogEntry{entry("1", "a")})
	if s.LastTimestamp() != "2" {
		t.Errorf("expected cursor to stay at 2, got %q", s.LastTimestamp())
	}
}
