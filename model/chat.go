package model

import "time"

type ChatSession struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	CustomerID *int64    `json:"customer_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"-"`
	Message   string    `json:"message"`
	Response  string    `json:"response,omitempty"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply is what the shop front receives for one chat turn.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}
