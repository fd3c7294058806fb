package service

import (
	"context"
	"strings"
	"testing"

	"school-assistant-be/internal/dto"
	"school-assistant-be/internal/pkg/serverutils"
	"school-assistant-be/internal/repository/memory"
	"school-assistant-be/pkg/agent"
	"school-assistant-be/pkg/llm"
	"school-assistant-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM replays canned responses, repeating the last one. It records
// the message history of every call for assertions.
type scriptedLLM struct {
	responses []string
	calls     int
	seen      [][]llm.Message
}

func (s *scriptedLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.seen = append(s.seen, history)
	s.calls++
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func stubLoginRegistry() *agent.Registry {
	r := agent.NewRegistry()
	r.Register(agent.Tool{
		Name: agent.ToolNameLogin,
		Kind: agent.KindLoginSuccess,
		Parameters: []agent.ParamSpec{
			{Name: "student_id", Type: "string", Required: true},
			{Name: "password", Type: "string", Required: true},
		},
		Handler: func(_ context.Context, _ *store.Session, args map[string]string) *agent.Result {
			return agent.SuccessResult(agent.ToolNameLogin, agent.KindLoginSuccess, map[string]interface{}{
				"sid": args["student_id"], "name": "Rafi", "temp": "t-9",
			})
		},
	})
	return r
}

func newChatbotService(responses []string) (IChatbotService, *memory.SessionRepository) {
	sessionRepo := memory.NewSessionRepository()
	executor := agent.NewExecutor(&scriptedLLM{responses: responses}, stubLoginRegistry(), 6, nopLogger{})
	svc := NewChatbotService(
		memory.NewChatSessionRepository(),
		memory.NewChatMessageRepository(),
		sessionRepo,
		executor,
		nil,
		nopLogger{},
	)
	return svc, sessionRepo
}

func sendReq(id uuid.UUID, chat string) *dto.SendChatRequest {
	return &dto.SendChatRequest{ChatSessionId: id, Chat: chat}
}

func deleteReq(id uuid.UUID) *dto.DeleteSessionRequest {
	return &dto.DeleteSessionRequest{ChatSessionId: id}
}

func newUUID() uuid.UUID { return uuid.New() }

func TestCreateSessionIssuesToken(t *testing.T) {
	svc, sessionRepo := newChatbotService(nil)

	res, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	sessionID, err := serverutils.ParseSessionToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Id.String(), sessionID)

	_, found := sessionRepo.Get(res.Id.String())
	assert.True(t, found, "agent state created alongside the conversation")
}

func TestSendChatPersistsTurn(t *testing.T) {
	svc, _ := newChatbotService([]string{`{"action": "reply", "reply": "Hello!"}`})

	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	res, err := svc.SendChat(context.Background(), sendReq(created.Id, "hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Sent.Chat)
	assert.Equal(t, "Hello!", res.Reply.Chat)
	assert.False(t, res.LoggedIn)

	history, err := svc.GetChatHistory(context.Background(), created.Id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hi", history[0].Chat)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "Hello!", history[1].Chat)
}

func TestSendChatLoginPersistsAcrossTurns(t *testing.T) {
	svc, sessionRepo := newChatbotService([]string{
		`{"action": "call", "tool": "student_login", "arguments": {"student_id": "101", "password": "pw"}}`,
		`{"action": "reply", "reply": "You are logged in."}`,
	})

	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	res, err := svc.SendChat(context.Background(), sendReq(created.Id, "login as 101/pw"))
	require.NoError(t, err)
	assert.True(t, res.LoggedIn)
	assert.Equal(t, "Rafi", res.StudentName)
	require.Len(t, res.Results, 1)
	assert.Equal(t, agent.KindLoginSuccess, res.Results[0].Kind)

	sess, found := sessionRepo.Get(created.Id.String())
	require.True(t, found)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "101", sess.Student.Sid)

	// Results round-trip through stored history.
	history, err := svc.GetChatHistory(context.Background(), created.Id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Len(t, history[1].Results, 1)
	assert.Equal(t, agent.KindLoginSuccess, history[1].Results[0].Kind)
}

func TestSendChatReplaysPriorResultsToModel(t *testing.T) {
	model := &scriptedLLM{responses: []string{
		`{"action": "call", "tool": "student_login", "arguments": {"student_id": "101", "password": "pw"}}`,
		`{"action": "reply", "reply": "You are logged in."}`,
		`{"action": "reply", "reply": "Your id is 101."}`,
	}}
	sessionRepo := memory.NewSessionRepository()
	executor := agent.NewExecutor(model, stubLoginRegistry(), 6, nopLogger{})
	svc := NewChatbotService(
		memory.NewChatSessionRepository(),
		memory.NewChatMessageRepository(),
		sessionRepo,
		executor,
		nil,
		nopLogger{},
	)

	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), sendReq(created.Id, "login as 101/pw"))
	require.NoError(t, err)

	_, err = svc.SendChat(context.Background(), sendReq(created.Id, "what is my id?"))
	require.NoError(t, err)

	// The second turn's model call sees the first turn's operation result
	// again, framed as an observation before the reply it produced.
	require.NotEmpty(t, model.seen)
	replayed := model.seen[len(model.seen)-1]
	obsIdx, replyIdx := -1, -1
	for i, msg := range replayed {
		if msg.Role == "user" && strings.Contains(msg.Content, "Operation result:") &&
			strings.Contains(msg.Content, `"sid":"101"`) {
			obsIdx = i
		}
		if msg.Role == "assistant" && msg.Content == "You are logged in." {
			replyIdx = i
		}
	}
	require.GreaterOrEqual(t, obsIdx, 0, "stored operation result replayed to the model")
	require.GreaterOrEqual(t, replyIdx, 0)
	assert.Less(t, obsIdx, replyIdx)
}

func TestDeleteSessionClearsEverything(t *testing.T) {
	svc, sessionRepo := newChatbotService([]string{`{"action": "reply", "reply": "ok"}`})

	created, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	_, err = svc.SendChat(context.Background(), sendReq(created.Id, "hi"))
	require.NoError(t, err)

	err = svc.DeleteSession(context.Background(), deleteReq(created.Id))
	require.NoError(t, err)

	_, err = svc.GetChatHistory(context.Background(), created.Id)
	assert.Error(t, err, "conversation record is gone")

	_, found := sessionRepo.Get(created.Id.String())
	assert.False(t, found)
}

func TestSendChatUnknownSession(t *testing.T) {
	svc, _ := newChatbotService(nil)

	_, err := svc.SendChat(context.Background(), sendReq(newUUID(), "hi"))
	assert.Error(t, err)
}
