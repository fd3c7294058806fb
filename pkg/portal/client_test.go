package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 10*time.Second)
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/index.php/Api/studentLogin", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "101", r.PostForm.Get("id"))
		assert.Equal(t, "secret", r.PostForm.Get("pass"))

		w.Write([]byte(`{"code": 1, "message": "ok", "data": {"sid": "101", "name": "Rafi", "temp": "t-9"}}`))
	})

	student, err := c.Login(context.Background(), "101", "secret")
	require.NoError(t, err)
	assert.Equal(t, "101", student.Sid)
	assert.Equal(t, "Rafi", student.Name)
	assert.Equal(t, "t-9", student.Temp)
}

func TestLoginTrimsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "101", r.PostForm.Get("id"))
		w.Write([]byte(`{"code": 1, "data": {"sid": "101", "name": "Rafi", "temp": "t-9"}}`))
	})

	_, err := c.Login(context.Background(), "  101  ", "pw")
	require.NoError(t, err)
}

func TestLoginRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code": 0, "message": "Wrong password"}`))
	})

	_, err := c.Login(context.Background(), "101", "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "Wrong password")
}

func TestTermResultNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"result": []}`))
	})

	_, err := c.TermResult(context.Background(), "101", "t-9", "1")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTermResultPassesFormFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "101", r.PostForm.Get("sid"))
		assert.Equal(t, "t-9", r.PostForm.Get("temp"))
		assert.Equal(t, "2", r.PostForm.Get("term"))
		w.Write([]byte(`{"result": [{"subject": "Maths", "marks": "88"}]}`))
	})

	data, err := c.TermResult(context.Background(), "101", "t-9", "2")
	require.NoError(t, err)
	assert.NotEmpty(t, data["result"])
}

func TestSyllabusEmptyList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.Syllabus(context.Background(), "t-9")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCalendarEnrichesFileURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/index.php/Api/getCalender", r.URL.Path)
		w.Write([]byte(`[{"title": "Term 1", "file_location": "term1.pdf"}, {"title": "No file"}]`))
	})

	items, err := c.Calendar(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, c.BaseURL+"/uploads/calender/term1.pdf", items[0]["file_url"])
	_, hasURL := items[1]["file_url"]
	assert.False(t, hasURL, "entries without file_location stay unenriched")
}

func TestRemoteStatusFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Worksheets(context.Background(), "t-9", "2026-03-01")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestResolveEntryDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{"today", "2026-03-15"},
		{"Tomorrow", "2026-03-16"},
		{" yesterday ", "2026-03-14"},
		{"2026-01-02", "2026-01-02"},
		{"  2026-01-02  ", "2026-01-02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveEntryDate(tt.in, now), "input %q", tt.in)
	}
}
