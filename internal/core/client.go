package core

// Client is a live connection as seen by the core layer. The display
// name lives in the presence table, not here: a connected client has no
// name until it joins a room.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
	}
}
