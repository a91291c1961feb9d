// Package queue defines message payloads exchanged over the message broker.
package queue

// TaskAddedEvent is published after a task has been appended to the store.
// Position is zero-based; Total is the length of the list after the append.
type TaskAddedEvent struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	AddedAt  string `json:"added_at"`
}
