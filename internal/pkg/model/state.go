package model

import "time"

// StateSnapshot is the published view of one light after a change.
type StateSnapshot struct {
	Name       string         `json:"name"`
	UUID       Identifier     `json:"uuid"`
	Kind       string         `json:"kind"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
	Timestamp  time.Time      `json:"timestamp"`
}

func (s StateSnapshot) IsOn() bool {
	return s.State == StateOn
}

// Light describes a device to sinks that announce it, such as Home
// Assistant discovery.
type Light struct {
	Name    string     `json:"name"`
	UUID    Identifier `json:"uuid"`
	Kind    string     `json:"kind"`
	Room    string     `json:"room,omitempty"`
	Effects []string   `json:"effects,omitempty"`
}
