package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

func (r *ChatRequest) ValidateChatRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Message, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.SessionID, validation.Length(0, 128)),
		validation.Field(&r.Language, validation.Length(0, 16)),
	)
}
