// Package hub fans a session's score and timer stream out to watchers
// using a channel-based broadcast loop.
package hub

import "encoding/json"

// Message is one text frame to deliver to every watcher.
type Message struct {
	Data []byte
}

// NewJSONMessage wraps already-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}

// EncodeJSON marshals v into a Message.
func EncodeJSON(v interface{}) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Data: data}, nil
}
