package database

import (
	"context"

	"github.com/smarttech/storefront/model"
)

// GetOrCreateChatSession is idempotent on the client session id.
func (d Datasource) GetOrCreateChatSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	var s model.ChatSession
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO chat_sessions (session_id)
		VALUES ($1)
		ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		RETURNING id, session_id, customer_id, created_at
	`, sessionID).Scan(&s.ID, &s.SessionID, &s.CustomerID, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err, "Chat session not found", "Failed to open chat session")
	}
	return &s, nil
}

func (d Datasource) SaveChatMessage(ctx context.Context, m model.ChatMessage) (*model.ChatMessage, error) {
	if m.Language == "" {
		m.Language = "en"
	}
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO chat_messages (session_id, message, response, language)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`, m.SessionID, m.Message, m.Response, m.Language).Scan(&m.ID, &m.Timestamp)
	if err != nil {
		return nil, mapError(err, "Chat session not found", "Failed to save chat message")
	}
	return &m, nil
}

// GetChatHistory returns the session's messages oldest first.
func (d Datasource) GetChatHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, session_id, message, COALESCE(response, ''), language, timestamp
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY timestamp ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, mapError(err, "Chat session not found", "Failed to load chat history")
	}
	defer rows.Close()

	history := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Message, &m.Response, &m.Language, &m.Timestamp); err != nil {
			return nil, mapError(err, "Chat session not found", "Failed to scan chat message")
		}
		history = append(history, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Chat session not found", "Failed to load chat history")
	}
	return history, nil
}
