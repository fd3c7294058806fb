package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNoData means the portal answered but had nothing matching the
	// request. Distinct from a transport or status failure.
	ErrNoData = errors.New("portal returned no data")

	// ErrInvalidCredentials means the portal rejected the login.
	ErrInvalidCredentials = errors.New("invalid student id or password")
)

// Student is the identity payload returned by a successful login.
type Student struct {
	Sid  string `json:"sid"`
	Name string `json:"name"`
	Temp string `json:"temp"`
}

// Client talks to the school portal API. All record endpoints are
// form-encoded POSTs; the calendar endpoint is a public GET.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type loginResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Login authenticates a student. The portal marks success with code == 1.
func (c *Client) Login(ctx context.Context, studentID, password string) (*Student, error) {
	form := url.Values{}
	form.Set("id", strings.TrimSpace(studentID))
	form.Set("pass", strings.TrimSpace(password))

	body, err := c.postForm(ctx, "/index.php/Api/studentLogin", form)
	if err != nil {
		return nil, err
	}

	var res loginResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parse login response: %w", err)
	}
	if res.Code != 1 {
		if res.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, res.Message)
		}
		return nil, ErrInvalidCredentials
	}

	var student Student
	if err := json.Unmarshal(res.Data, &student); err != nil {
		return nil, fmt.Errorf("parse login payload: %w", err)
	}
	return &student, nil
}

// TermResult fetches term exam results. The portal signals "nothing found"
// with a missing/empty result field.
func (c *Client) TermResult(ctx context.Context, sid, temp, term string) (map[string]interface{}, error) {
	form := url.Values{}
	form.Set("sid", sid)
	form.Set("temp", temp)
	form.Set("term", term)

	data, err := c.postJSONMap(ctx, "/index.php/Api/getTermResult", form)
	if err != nil {
		return nil, err
	}
	if isEmptyValue(data["result"]) {
		return nil, ErrNoData
	}
	return data, nil
}

// UnitTestResult fetches class test results.
func (c *Client) UnitTestResult(ctx context.Context, sid, temp, term string) (map[string]interface{}, error) {
	form := url.Values{}
	form.Set("sid", sid)
	form.Set("temp", temp)
	form.Set("term", term)

	data, err := c.postJSONMap(ctx, "/index.php/Api/getUnitTestResult", form)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}
	return data, nil
}

// Diary fetches homework entries for one calendar date (YYYY-MM-DD).
func (c *Client) Diary(ctx context.Context, temp, entryDate string) (interface{}, error) {
	form := url.Values{}
	form.Set("temp", temp)
	form.Set("entry_date", entryDate)

	body, err := c.postForm(ctx, "/index.php/Api/getDiary", form)
	if err != nil {
		return nil, err
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse diary response: %w", err)
	}
	return data, nil
}

// Syllabus fetches the syllabus document list.
func (c *Client) Syllabus(ctx context.Context, temp string) ([]map[string]interface{}, error) {
	form := url.Values{}
	form.Set("temp", temp)

	items, err := c.postJSONList(ctx, "/index.php/Api/getSyllabus", form)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoData
	}
	return items, nil
}

// Worksheets fetches the worksheet list for one calendar date.
func (c *Client) Worksheets(ctx context.Context, temp, entryDate string) ([]map[string]interface{}, error) {
	form := url.Values{}
	form.Set("temp", temp)
	form.Set("entry_date", entryDate)

	items, err := c.postJSONList(ctx, "/index.php/Api/worksheetList", form)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoData
	}
	return items, nil
}

// Calendar fetches the academic calendar. Public endpoint, no login needed.
// Each entry is enriched with a resolvable file_url.
func (c *Client) Calendar(ctx context.Context) ([]map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/index.php/Api/getCalender", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse calendar response: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoData
	}

	for _, item := range items {
		if loc, ok := item["file_location"].(string); ok && loc != "" {
			item["file_url"] = c.BaseURL + "/uploads/calender/" + loc
		}
	}
	return items, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "*/*")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *Client) postJSONMap(ctx context.Context, path string, form url.Values) (map[string]interface{}, error) {
	body, err := c.postForm(ctx, path, form)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return data, nil
}

func (c *Client) postJSONList(ctx context.Context, path string, form url.Values) ([]map[string]interface{}, error) {
	body, err := c.postForm(ctx, path, form)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return items, nil
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}
