// Package prefs provides the durable key/value store behind the cookie jar.
// A store maps a string key to a set of strings, the same shape as an
// Android SharedPreferences string set, and is always rewritten as a whole:
// Replace drops every previous entry before writing the new ones.
package prefs

import "sync"

// Store is a durable string-set store.
type Store interface {
	// All returns every entry. Entries that cannot be read back (corrupt or
	// written under another key) are left out rather than failing the call.
	All() (map[string][]string, error)
	// Replace atomically swaps the whole content for entries.
	Replace(entries map[string][]string) error
	// Clear removes every entry.
	Clear() error
	Close() error
}

// Memory is an in-process Store. Nothing survives the process.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]string
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]string)}
}

func (m *Memory) All() (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyEntries(m.entries), nil
}

func (m *Memory) Replace(entries map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = copyEntries(entries)
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]string)
	return nil
}

func (m *Memory) Close() error { return nil }

// copyEntries deep-copies entries and drops duplicate values. First
// occurrence order is kept so a host's cookies reload in insertion order.
func copyEntries(entries map[string][]string) map[string][]string {
	out := make(map[string][]string, len(entries))
	for k, vs := range entries {
		out[k] = toSet(vs)
	}
	return out
}

func toSet(vs []string) []string {
	seen := make(map[string]struct{}, len(vs))
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)
