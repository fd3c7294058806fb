package agent

import (
	"context"
	"testing"

	"school-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTool records handler invocations so tests can assert that
// validation and auth gating happen before any work runs.
func countingTool(name string, requiresAuth bool, params []ParamSpec, calls *int) Tool {
	return Tool{
		Name:         name,
		Description:  "test tool",
		Kind:         KindCalendar,
		Parameters:   params,
		RequiresAuth: requiresAuth,
		Handler: func(_ context.Context, _ *store.Session, _ map[string]string) *Result {
			*calls++
			return SuccessResult(name, KindCalendar, map[string]interface{}{"ok": true})
		},
	}
}

func TestDispatchUnknownOperation(t *testing.T) {
	r := NewRegistry()

	res := r.Dispatch(context.Background(), "no_such_tool", nil, &store.Session{ID: "s"})
	require.NotNil(t, res)
	assert.False(t, res.OK)
	assert.Equal(t, CodeUnknownOperation, res.Code)
}

func TestDispatchValidatesBeforeHandler(t *testing.T) {
	calls := 0
	r := NewRegistry()
	r.Register(countingTool("get_homework", false, []ParamSpec{
		{Name: "entry_date", Type: "string", Required: true},
	}, &calls))

	sess := &store.Session{ID: "s"}

	res := r.Dispatch(context.Background(), "get_homework", map[string]string{}, sess)
	assert.Equal(t, CodeInvalidArguments, res.Code)

	res = r.Dispatch(context.Background(), "get_homework", map[string]string{"entry_date": ""}, sess)
	assert.Equal(t, CodeInvalidArguments, res.Code)

	res = r.Dispatch(context.Background(), "get_homework", map[string]string{
		"entry_date": "today", "bogus": "x",
	}, sess)
	assert.Equal(t, CodeInvalidArguments, res.Code)

	assert.Equal(t, 0, calls, "handler must not run on invalid arguments")

	res = r.Dispatch(context.Background(), "get_homework", map[string]string{"entry_date": "today"}, sess)
	assert.True(t, res.OK)
	assert.Equal(t, 1, calls)
}

func TestDispatchAuthGateBlocksHandler(t *testing.T) {
	calls := 0
	r := NewRegistry()
	r.Register(countingTool("get_syllabus", true, nil, &calls))

	res := r.Dispatch(context.Background(), "get_syllabus", nil, &store.Session{ID: "s"})
	require.False(t, res.OK)
	assert.Equal(t, CodeAuthRequired, res.Code)
	assert.Equal(t, 0, calls, "handler must not run without a login")

	// The same call succeeds once the session carries an identity.
	sess := &store.Session{ID: "s"}
	sess.ApplyLogin(store.StudentIdentity{Sid: "101", Name: "Rafi", Temp: "t-9"})

	res = r.Dispatch(context.Background(), "get_syllabus", nil, sess)
	assert.True(t, res.OK)
	assert.Equal(t, 1, calls)
}

func TestRegisterFirstWins(t *testing.T) {
	first := 0
	second := 0
	r := NewRegistry()
	r.Register(countingTool("dup", false, nil, &first))
	r.Register(countingTool("dup", false, nil, &second))

	require.Len(t, r.Tools(), 1)

	r.Dispatch(context.Background(), "dup", nil, &store.Session{ID: "s"})
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}
