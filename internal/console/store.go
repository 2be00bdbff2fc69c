package console

import (
	"mcpanel/internal/domain"
)

const DefaultCapacity = 1000

// Store is an insertion-ordered, deduplicated, capacity-bounded buffer of
// console entries for one server. One Store belongs to exactly one stream
// client; it is not safe for concurrent use.
type Store struct {
	entries  []domain.LogEntry
	seen     map[string]struct{}
	capacity int
}

func NewStore() *Store {
	return NewStoreWithCapacity(DefaultCapacity)
}

func NewStoreWithCapacity(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		seen:     make(map[string]struct{}),
		capacity: capacity,
	}
}

// Append merges candidate entries into the store. An entry is accepted only if
// no stored entry shares its (timestamp, content) identity, so replaying the
// same batch is a no-op. When the store grows past capacity the oldest entries
// are evicted first. Returns the entries actually appended, in order.
func (s *Store) Append(entries []domain.LogEntry) []domain.LogEntry {
	var appended []domain.LogEntry
	for _, e := range entries {
		key := e.Key()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.entries = append(s.entries, e)
		appended = append(appended, e)
	}

	if over := len(s.entries) - s.capacity; over > 0 {
		for _, evicted := range s.entries[:over] {
			delete(s.seen, evicted.Key())
		}
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
	return appended
}

// LastTimestamp is the resume cursor for the next fetch: the timestamp of the
// most recent entry, or "" for an empty store.
func (s *Store) LastTimestamp() string {
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[len(s.entries)-1].Timestamp
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the stored entries in append order.
func (s *Store) Entries() []domain.LogEntry {
	out := make([]domain.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
