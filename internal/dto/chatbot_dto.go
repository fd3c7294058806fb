package dto

import (
	"time"

	"github.com/google/uuid"

	"school-assistant-be/pkg/agent"
)

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Token string    `json:"token"`
}

type SendChatRequest struct {
	// ChatSessionId comes from the session token, not the body
	ChatSessionId uuid.UUID `json:"-"`
	Chat          string    `json:"chat" validate:"required"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID             `json:"chat_session_id"`
	Sent          *SendChatResponseChat `json:"sent"`
	Reply         *SendChatResponseChat `json:"reply"`
	Results       []*agent.Result       `json:"results,omitempty"`
	LoggedIn      bool                  `json:"logged_in"`
	StudentName   string                `json:"student_name,omitempty"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID       `json:"id"`
	Role      string          `json:"role"`
	Chat      string          `json:"chat"`
	Results   []*agent.Result `json:"results,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}
