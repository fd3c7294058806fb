package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"school-assistant-be/pkg/agent"
	"school-assistant-be/pkg/portal"
	"school-assistant-be/pkg/store"
	memorystore "school-assistant-be/pkg/vectorstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type portalStub struct {
	t        *testing.T
	requests int
	handler  http.HandlerFunc
}

func newToolRegistry(t *testing.T, handler http.HandlerFunc) (*agent.Registry, *portalStub) {
	t.Helper()
	stub := &portalStub{t: t, handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.requests++
		if stub.handler != nil {
			stub.handler(w, r)
			return
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := portal.NewClient(srv.URL, 10*time.Second)
	docs := newDocumentService(memorystore.NewStorage(), &fakeEmbedder{})
	return BuildToolRegistry(client, docs, 4), stub
}

func loggedInSession() *store.Session {
	s := &store.Session{ID: "conv-1"}
	s.ApplyLogin(store.StudentIdentity{Sid: "101", Name: "Rafi", Temp: "t-9"})
	return s
}

func TestAuthGatedToolsMakeNoHTTPCallWithoutLogin(t *testing.T) {
	registry, stub := newToolRegistry(t, nil)
	sess := &store.Session{ID: "conv-1"}

	for _, tc := range []struct {
		tool string
		args map[string]string
	}{
		{"get_term_result", map[string]string{"term": "1"}},
		{"get_unit_test_result", map[string]string{"term": "1"}},
		{"get_homework", map[string]string{"entry_date": "today"}},
		{"get_syllabus", nil},
		{"get_worksheet", map[string]string{"entry_date": "today"}},
	} {
		res := registry.Dispatch(context.Background(), tc.tool, tc.args, sess)
		assert.Equal(t, agent.CodeAuthRequired, res.Code, tc.tool)
	}

	assert.Equal(t, 0, stub.requests, "auth gate must fire before any network call")
}

func TestInvalidArgumentsMakeNoHTTPCall(t *testing.T) {
	registry, stub := newToolRegistry(t, nil)

	res := registry.Dispatch(context.Background(), "get_term_result", nil, loggedInSession())
	assert.Equal(t, agent.CodeInvalidArguments, res.Code)

	res = registry.Dispatch(context.Background(), "student_login",
		map[string]string{"student_id": "101", "password": "pw", "extra": "x"}, &store.Session{ID: "c"})
	assert.Equal(t, agent.CodeInvalidArguments, res.Code)

	assert.Equal(t, 0, stub.requests)
}

func TestLoginToolOutcomes(t *testing.T) {
	registry, stub := newToolRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code": 1, "data": {"sid": "101", "name": "Rafi", "temp": "t-9"}}`))
	})

	res := registry.Dispatch(context.Background(), "student_login",
		map[string]string{"student_id": "101", "password": "pw"}, &store.Session{ID: "c"})
	require.True(t, res.OK)
	assert.Equal(t, agent.KindLoginSuccess, res.Kind)
	assert.Equal(t, "101", res.Payload["sid"])
	assert.Equal(t, "t-9", res.Payload["temp"])

	stub.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code": 0, "message": "Wrong password"}`))
	}
	res = registry.Dispatch(context.Background(), "student_login",
		map[string]string{"student_id": "101", "password": "bad"}, &store.Session{ID: "c"})
	assert.False(t, res.OK)
	assert.Equal(t, agent.KindLoginFailure, res.Kind)
	assert.Equal(t, agent.CodeInvalidCredentials, res.Code)
}

func TestTermResultMapsNoDataToRemoteDataEmpty(t *testing.T) {
	registry, _ := newToolRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"result": []}`))
	})

	res := registry.Dispatch(context.Background(), "get_term_result",
		map[string]string{"term": "1"}, loggedInSession())
	assert.False(t, res.OK)
	assert.Equal(t, agent.CodeRemoteDataEmpty, res.Code)
}

func TestRemoteStatusFailureMapsToRemoteCallFailed(t *testing.T) {
	registry, _ := newToolRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res := registry.Dispatch(context.Background(), "get_syllabus", nil, loggedInSession())
	assert.False(t, res.OK)
	assert.Equal(t, agent.CodeRemoteCallFailed, res.Code)
}

func TestHomeworkResolvesRelativeDate(t *testing.T) {
	datePattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	registry, _ := newToolRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Regexp(t, datePattern, r.PostForm.Get("entry_date"))
		assert.Equal(t, "t-9", r.PostForm.Get("temp"))
		w.Write([]byte(`[{"subject": "Maths", "homework": "page 12"}]`))
	})

	res := registry.Dispatch(context.Background(), "get_homework",
		map[string]string{"entry_date": "tomorrow"}, loggedInSession())
	require.True(t, res.OK)
	assert.Regexp(t, datePattern, res.Payload["entry_date"])
}

func TestCalendarNeedsNoLogin(t *testing.T) {
	registry, _ := newToolRegistry(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"title": "Term 1", "file_location": "t1.pdf"}]`))
	})

	res := registry.Dispatch(context.Background(), "get_calendar", nil, &store.Session{ID: "c"})
	require.True(t, res.OK)
	assert.Equal(t, agent.KindCalendar, res.Kind)
}

func TestAskDocumentOnEmptyStore(t *testing.T) {
	registry, stub := newToolRegistry(t, nil)

	res := registry.Dispatch(context.Background(), "ask_document",
		map[string]string{"query": "sports day"}, &store.Session{ID: "c"})
	assert.False(t, res.OK)
	assert.Equal(t, agent.CodeStoreEmpty, res.Code)
	assert.Equal(t, 0, stub.requests, "document search never touches the portal")
}

func TestAskDocumentReturnsPassages(t *testing.T) {
	docs := newDocumentService(memorystore.NewStorage(), &fakeEmbedder{})
	_, err := docs.Ingest(context.Background(), "handbook.txt",
		[]byte("Sports day is held in November every year."))
	require.NoError(t, err)

	registry := BuildToolRegistry(portal.NewClient("http://127.0.0.1:0", time.Second), docs, 4)
	res := registry.Dispatch(context.Background(), "ask_document",
		map[string]string{"query": "sports day"}, &store.Session{ID: "c"})

	require.True(t, res.OK)
	passages, ok := res.Payload["passages"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, passages)
	assert.LessOrEqual(t, len(passages), 4)
}
