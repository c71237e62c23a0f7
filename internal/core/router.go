package core

import "sync"

// Router computes recipient sets from the presence table and delivers
// events over client channels. Recipients are snapshotted at dispatch
// time: a connection that joins or leaves mid-dispatch is not included
// or excluded retroactively.
type Router struct {
	presence *PresenceTable

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRouter constructs a router over the given presence table.
func NewRouter(presence *PresenceTable) *Router {
	return &Router{
		presence: presence,
		clients:  make(map[string]*Client),
	}
}

// Add registers a client for delivery.
func (r *Router) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Remove unregisters a client. Events dispatched afterwards no longer
// reach it.
func (r *Router) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, connID)
}

// ToOne delivers an event to a single connection. Returns false if the
// connection is no longer registered.
func (r *Router) ToOne(connID string, ev *Event) bool {
	r.mu.RLock()
	c, ok := r.clients[connID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	r.send(c, ev)
	return true
}

// ToRoom delivers an event to every connection currently in the room,
// sender included.
func (r *Router) ToRoom(room string, ev *Event) {
	r.dispatch(room, "", ev)
}

// ToRoomExcept delivers an event to every connection in the room other
// than exceptID.
func (r *Router) ToRoomExcept(room, exceptID string, ev *Event) {
	r.dispatch(room, exceptID, ev)
}

func (r *Router) dispatch(room, exceptID string, ev *Event) {
	members := r.presence.ListByRoom(room)

	r.mu.RLock()
	targets := make([]*Client, 0, len(members))
	for _, p := range members {
		if p.ConnID == exceptID {
			continue
		}
		if c, ok := r.clients[p.ConnID]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range targets {
		r.send(c, ev)
	}
}

func (r *Router) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
