package kafka

import (
	"encoding/json"
	"time"
)

// Event is the envelope of every message on the events topic
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// DecodeEvent parses a message value into an Event
func DecodeEvent(value []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(value, &e)
	return e, err
}
