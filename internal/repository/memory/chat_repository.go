package memory

import (
	"context"
	"sort"
	"time"

	"school-assistant-be/internal/entity"
	"school-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// Conversation history lives as long as the agent session state does, so both
// repositories share the same expiration policy.

type ChatSessionRepository struct {
	cache *cache.Cache
}

func NewChatSessionRepository() contract.ChatSessionRepository {
	return &ChatSessionRepository{cache: cache.New(1*time.Hour, 10*time.Minute)}
}

func (r *ChatSessionRepository) Create(_ context.Context, session *entity.ChatSession) error {
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.cache.Set(session.Id.String(), session, cache.DefaultExpiration)
	return nil
}

func (r *ChatSessionRepository) FindById(_ context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.ChatSession), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ChatSessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}

type ChatMessageRepository struct {
	cache *cache.Cache
}

func NewChatMessageRepository() contract.ChatMessageRepository {
	return &ChatMessageRepository{cache: cache.New(1*time.Hour, 10*time.Minute)}
}

func (r *ChatMessageRepository) Create(_ context.Context, message *entity.ChatMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	key := message.ChatSessionId.String()
	var messages []*entity.ChatMessage
	if x, found := r.cache.Get(key); found {
		messages = x.([]*entity.ChatMessage)
	}
	messages = append(messages, message)
	r.cache.Set(key, messages, cache.DefaultExpiration)
	return nil
}

func (r *ChatMessageRepository) FindByChatSessionId(_ context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	x, found := r.cache.Get(sessionId.String())
	if !found {
		return nil, nil
	}

	messages := x.([]*entity.ChatMessage)
	out := make([]*entity.ChatMessage, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ChatMessageRepository) DeleteByChatSessionId(_ context.Context, sessionId uuid.UUID) error {
	r.cache.Delete(sessionId.String())
	return nil
}
