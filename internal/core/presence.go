package core

import "sync"

// Presence records that a live connection is participating in a room
// under a display name.
type Presence struct {
	ConnID string
	Name   string
	Room   string
}

// PresenceTable maps connection identities to their current presence.
// There is at most one record per connection; a connection is "in a
// room" iff a record exists. All methods are safe for concurrent use;
// synchronization is internal and not exposed to callers.
type PresenceTable struct {
	mu     sync.RWMutex
	byConn map[string]Presence
}

// NewPresenceTable constructs an empty table.
func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		byConn: make(map[string]Presence),
	}
}

// Set records the presence for connID, replacing any previous record.
// Returns the previous presence if one existed.
func (t *PresenceTable) Set(connID, name, room string) (Presence, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, existed := t.byConn[connID]
	t.byConn[connID] = Presence{ConnID: connID, Name: name, Room: room}
	return prev, existed
}

// Get returns the presence for connID, if any.
func (t *PresenceTable) Get(connID string) (Presence, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.byConn[connID]
	return p, ok
}

// Remove deletes the presence for connID and returns the removed
// record, if any.
func (t *PresenceTable) Remove(connID string) (Presence, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.byConn[connID]
	if ok {
		delete(t.byConn, connID)
	}
	return p, ok
}

// ListByRoom returns a snapshot of every presence whose room equals
// room. Order is unspecified.
func (t *PresenceTable) ListByRoom(room string) []Presence {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Presence
	for _, p := range t.byConn {
		if p.Room == room {
			out = append(out, p)
		}
	}
	return out
}
