package service

import (
	"context"
	"encoding/json"
	"time"

	"school-assistant-be/internal/constant"
	"school-assistant-be/internal/dto"
	"school-assistant-be/internal/entity"
	"school-assistant-be/internal/pkg/logger"
	"school-assistant-be/internal/pkg/serverutils"
	"school-assistant-be/internal/repository/contract"
	"school-assistant-be/internal/repository/memory"
	"school-assistant-be/pkg/agent"
	"school-assistant-be/pkg/events"
	"school-assistant-be/pkg/llm"
	pktNats "school-assistant-be/pkg/nats"
	"school-assistant-be/pkg/store"

	"github.com/google/uuid"
)

type IChatbotService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, request *dto.DeleteSessionRequest) error
}

type chatbotService struct {
	chatSessionRepo contract.ChatSessionRepository
	chatMessageRepo contract.ChatMessageRepository
	sessionRepo     *memory.SessionRepository
	executor        *agent.Executor
	eventPublisher  *pktNats.Publisher
	log             logger.ILogger
}

func NewChatbotService(
	chatSessionRepo contract.ChatSessionRepository,
	chatMessageRepo contract.ChatMessageRepository,
	sessionRepo *memory.SessionRepository,
	executor *agent.Executor,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatbotService {
	return &chatbotService{
		chatSessionRepo: chatSessionRepo,
		chatMessageRepo: chatMessageRepo,
		sessionRepo:     sessionRepo,
		executor:        executor,
		eventPublisher:  eventPublisher,
		log:             log,
	}
}

func (cs *chatbotService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	chatSession := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     "New conversation",
		CreatedAt: time.Now(),
	}
	if err := cs.chatSessionRepo.Create(ctx, chatSession); err != nil {
		return nil, err
	}

	cs.sessionRepo.Save(&store.Session{ID: chatSession.Id.String()})

	token, err := serverutils.IssueSessionToken(chatSession.Id.String())
	if err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id, Token: token}, nil
}

func (cs *chatbotService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	if _, err := cs.chatSessionRepo.FindById(ctx, sessionId); err != nil {
		return nil, err
	}

	messages, err := cs.chatMessageRepo.FindByChatSessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	history := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		item := &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Content,
			CreatedAt: msg.CreatedAt,
		}
		if len(msg.Results) > 0 {
			// Stored results are our own marshaling; a decode failure
			// only drops the structured payloads, not the text.
			if err := json.Unmarshal(msg.Results, &item.Results); err != nil {
				cs.log.Warn("chatbot", "failed to decode stored results", map[string]interface{}{
					"message_id": msg.Id.String(), "error": err.Error(),
				})
			}
		}
		history = append(history, item)
	}
	return history, nil
}

func (cs *chatbotService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if _, err := cs.chatSessionRepo.FindById(ctx, request.ChatSessionId); err != nil {
		return nil, err
	}

	sess, found := cs.sessionRepo.Get(request.ChatSessionId.String())
	if !found {
		// State expired while the conversation record survived; start
		// logged out rather than failing the turn.
		sess = &store.Session{ID: request.ChatSessionId.String()}
	}
	wasLoggedInAs := ""
	if sess.LoggedIn() {
		wasLoggedInAs = sess.Student.Sid
	}

	priorMessages, err := cs.chatMessageRepo.FindByChatSessionId(ctx, request.ChatSessionId)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(priorMessages))
	for _, msg := range priorMessages {
		// Operation results from earlier turns were observed before the
		// reply they produced, so they are replayed in that order.
		if len(msg.Results) > 0 {
			var results []*agent.Result
			if err := json.Unmarshal(msg.Results, &results); err != nil {
				cs.log.Warn("chatbot", "failed to decode stored results", map[string]interface{}{
					"message_id": msg.Id.String(), "error": err.Error(),
				})
			} else {
				for _, r := range results {
					history = append(history, llm.Message{Role: "user", Content: agent.ObservationMessage(r)})
				}
			}
		}
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	outcome := cs.executor.ExecuteTurn(ctx, sess, history, request.Chat)
	cs.sessionRepo.Save(sess)

	if sess.LoggedIn() && sess.Student.Sid != wasLoggedInAs {
		cs.publishLogin(ctx, sess)
	}

	now := time.Now()
	sent := &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          constant.ChatMessageRoleUser,
		Content:       request.Chat,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now,
	}
	if err := cs.chatMessageRepo.Create(ctx, sent); err != nil {
		return nil, err
	}

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		Role:          constant.ChatMessageRoleModel,
		Content:       outcome.Reply,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now.Add(time.Millisecond),
	}
	if len(outcome.Results) > 0 {
		if encoded, err := json.Marshal(outcome.Results); err == nil {
			reply.Results = encoded
		}
	}
	if err := cs.chatMessageRepo.Create(ctx, reply); err != nil {
		return nil, err
	}

	response := &dto.SendChatResponse{
		ChatSessionId: request.ChatSessionId,
		Sent: &dto.SendChatResponseChat{
			Id: sent.Id, Chat: sent.Content, Role: sent.Role, CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id: reply.Id, Chat: reply.Content, Role: reply.Role, CreatedAt: reply.CreatedAt,
		},
		Results:  outcome.Results,
		LoggedIn: sess.LoggedIn(),
	}
	if sess.LoggedIn() {
		response.StudentName = sess.Student.Name
	}
	return response, nil
}

func (cs *chatbotService) DeleteSession(ctx context.Context, request *dto.DeleteSessionRequest) error {
	if err := cs.chatMessageRepo.DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := cs.chatSessionRepo.Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}
	cs.sessionRepo.Delete(request.ChatSessionId.String())
	return nil
}

func (cs *chatbotService) publishLogin(ctx context.Context, sess *store.Session) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.NewStudentLoggedIn(sess.ID, sess.Student.Sid, sess.Student.Name)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.log.Warn("chatbot", "failed to publish login event", map[string]interface{}{
			"session_id": sess.ID, "error": err.Error(),
		})
	}
}
