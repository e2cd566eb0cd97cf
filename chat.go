package storefront

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/smarttech/storefront/model"
)

const defaultLanguage = "en"

// Chat answers one customer message. A blank session id starts a new
// session. The assistant always produces a reply; only storage failures are
// returned as errors.
func (s *Storefront) Chat(ctx context.Context, message, sessionID, language string) (*model.ChatReply, error) {
	ctx, span := tracer.Start(ctx, "Chat")
	defer span.End()

	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}

	if _, err := s.datasource.GetOrCreateChatSession(ctx, sessionID); err != nil {
		return nil, err
	}

	response := s.assistant.GetResponse(ctx, message, language)

	if _, err := s.datasource.SaveChatMessage(ctx, model.ChatMessage{
		SessionID: sessionID,
		Message:   message,
		Response:  response,
		Language:  language,
	}); err != nil {
		return nil, err
	}
	return &model.ChatReply{Response: response, SessionID: sessionID}, nil
}

// ChatHistory lists a session's messages oldest first.
func (s *Storefront) ChatHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	return s.datasource.GetChatHistory(ctx, sessionID)
}
