package agent

import (
	"context"
	"errors"
	"testing"

	"school-assistant-be/pkg/llm"
	"school-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// scriptedLLM returns canned responses in order, repeating the last one when
// the script runs out.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func loginRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Register(Tool{
		Name: ToolNameLogin,
		Kind: KindLoginSuccess,
		Parameters: []ParamSpec{
			{Name: "student_id", Type: "string", Required: true},
			{Name: "password", Type: "string", Required: true},
		},
		Handler: func(_ context.Context, _ *store.Session, args map[string]string) *Result {
			return SuccessResult(ToolNameLogin, KindLoginSuccess, map[string]interface{}{
				"sid": args["student_id"], "name": "Rafi", "temp": "t-9",
			})
		},
	})
	r.Register(Tool{
		Name:         "get_syllabus",
		Kind:         KindSyllabus,
		RequiresAuth: true,
		Handler: func(_ context.Context, sess *store.Session, _ map[string]string) *Result {
			return SuccessResult("get_syllabus", KindSyllabus, map[string]interface{}{
				"temp": sess.Student.Temp,
			})
		},
	})
	return r
}

func TestExecuteTurnPlainReply(t *testing.T) {
	stub := &scriptedLLM{responses: []string{`{"action": "reply", "reply": "Hi there"}`}}
	e := NewExecutor(stub, NewRegistry(), 6, nopLogger{})

	outcome := e.ExecuteTurn(context.Background(), &store.Session{ID: "s"}, nil, "hello")

	assert.Equal(t, "Hi there", outcome.Reply)
	assert.Empty(t, outcome.Results)
	assert.Equal(t, 1, stub.calls)
}

func TestExecuteTurnLoginThenAuthedCall(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		`{"action": "call", "tool": "student_login", "arguments": {"student_id": "101", "password": "pw"}}`,
		`{"action": "call", "tool": "get_syllabus"}`,
		`{"action": "reply", "reply": "Here is your syllabus."}`,
	}}
	sess := &store.Session{ID: "s"}
	e := NewExecutor(stub, loginRegistry(t), 6, nopLogger{})

	outcome := e.ExecuteTurn(context.Background(), sess, nil, "show my syllabus, id 101 pw pw")

	assert.Equal(t, "Here is your syllabus.", outcome.Reply)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, KindLoginSuccess, outcome.Results[0].Kind)
	assert.Equal(t, KindSyllabus, outcome.Results[1].Kind)

	// Login folded into the session before the syllabus call ran.
	require.True(t, sess.LoggedIn())
	assert.Equal(t, "101", sess.Student.Sid)
	assert.Equal(t, "t-9", sess.Student.Temp)
	assert.Equal(t, "t-9", outcome.Results[1].Payload["temp"])
}

func TestExecuteTurnLoginDedupBySid(t *testing.T) {
	sess := &store.Session{ID: "s"}
	registry := loginRegistry(t)
	e := NewExecutor(nil, registry, 6, nopLogger{})

	login := func(sid string) {
		stub := &scriptedLLM{responses: []string{
			`{"action": "call", "tool": "student_login", "arguments": {"student_id": "` + sid + `", "password": "pw"}}`,
			`{"action": "reply", "reply": "done"}`,
		}}
		e = NewExecutor(stub, registry, 6, nopLogger{})
		e.ExecuteTurn(context.Background(), sess, nil, "login")
	}

	login("101")
	login("202")
	login("101")

	require.True(t, sess.LoggedIn())
	assert.Equal(t, "101", sess.Student.Sid, "current identity follows the latest login")
	require.Len(t, sess.SavedStudents, 2, "repeat sid must not duplicate history")
	assert.Equal(t, "101", sess.SavedStudents[0].Sid)
	assert.Equal(t, "202", sess.SavedStudents[1].Sid)
}

func TestExecuteTurnCapFallsBack(t *testing.T) {
	// A model that always wants one more call must be cut off.
	stub := &scriptedLLM{responses: []string{`{"action": "call", "tool": "get_syllabus"}`}}
	sess := &store.Session{ID: "s"}
	sess.ApplyLogin(store.StudentIdentity{Sid: "101", Name: "Rafi", Temp: "t-9"})

	e := NewExecutor(stub, loginRegistry(t), 3, nopLogger{})
	outcome := e.ExecuteTurn(context.Background(), sess, nil, "loop forever")

	assert.Equal(t, fallbackReply, outcome.Reply)
	assert.Equal(t, 3, stub.calls)
	assert.Len(t, outcome.Results, 3)
}

func TestExecuteTurnModelFailureFallsBack(t *testing.T) {
	stub := &scriptedLLM{err: errors.New("connection refused")}
	e := NewExecutor(stub, NewRegistry(), 6, nopLogger{})

	outcome := e.ExecuteTurn(context.Background(), &store.Session{ID: "s"}, nil, "hello")

	assert.Equal(t, fallbackReply, outcome.Reply)
	assert.Empty(t, outcome.Results)
}

func TestExecuteTurnMalformedDecisionIsRetried(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		`{"action": "jump"}`,
		`{"action": "reply", "reply": "recovered"}`,
	}}
	e := NewExecutor(stub, NewRegistry(), 6, nopLogger{})

	outcome := e.ExecuteTurn(context.Background(), &store.Session{ID: "s"}, nil, "hello")

	assert.Equal(t, "recovered", outcome.Reply)
	assert.Equal(t, 2, stub.calls)
}

func TestExecuteTurnAuthGateFedBackToModel(t *testing.T) {
	stub := &scriptedLLM{responses: []string{
		`{"action": "call", "tool": "get_syllabus"}`,
		`{"action": "reply", "reply": "Please login first."}`,
	}}
	e := NewExecutor(stub, loginRegistry(t), 6, nopLogger{})

	outcome := e.ExecuteTurn(context.Background(), &store.Session{ID: "s"}, nil, "syllabus please")

	assert.Equal(t, "Please login first.", outcome.Reply)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, CodeAuthRequired, outcome.Results[0].Code)
}
