package agent

import (
	"context"
	"fmt"

	"school-assistant-be/pkg/store"
)

// Error codes carried on failed results. These are part of the contract with
// the presentation layer and with the model (they are folded back into the
// conversation), so they are stable strings rather than Go errors.
const (
	CodeUnknownOperation   = "unknown_operation"
	CodeInvalidArguments   = "invalid_arguments"
	CodeAuthRequired       = "authentication_required"
	CodeInvalidCredentials = "invalid_credentials"
	CodeRemoteCallFailed   = "remote_call_failed"
	CodeRemoteDataEmpty    = "remote_data_empty"
	CodeStoreEmpty         = "store_empty"
	CodeMalformedRequest   = "model_request_malformed"
)

// Payload kinds the presentation layer knows how to render.
const (
	KindLoginSuccess    = "login-success"
	KindLoginFailure    = "login-failure"
	KindTermResults     = "term-results"
	KindUnitTestResults = "unit-test-results"
	KindHomework        = "homework"
	KindSyllabus        = "syllabus"
	KindWorksheet       = "worksheet"
	KindCalendar        = "calendar"
	KindDocumentSearch  = "document-search"
)

// ParamSpec declares one parameter of a tool's schema.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // currently always "string"
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is one operation the model may request. The handler never sees an
// unauthenticated session when RequiresAuth is set; Dispatch gates that.
type Tool struct {
	Name         string
	Description  string
	Kind         string // default payload kind for this tool's results
	Parameters   []ParamSpec
	RequiresAuth bool
	Handler      func(ctx context.Context, sess *store.Session, args map[string]string) *Result
}

// Result is the outcome of one operation execution. Operations never raise:
// every failure, including remote faults, becomes an error result so the
// conversation can continue.
type Result struct {
	Tool       string                 `json:"tool"`
	Kind       string                 `json:"kind"`
	OK         bool                   `json:"ok"`
	Code       string                 `json:"code,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	ErrMessage string                 `json:"error,omitempty"`
}

func SuccessResult(tool, kind string, payload map[string]interface{}) *Result {
	return &Result{Tool: tool, Kind: kind, OK: true, Payload: payload}
}

func ErrorResult(tool, kind, code, message string) *Result {
	return &Result{Tool: tool, Kind: kind, Code: code, ErrMessage: message}
}

func (t *Tool) validateArgs(args map[string]string) error {
	declared := make(map[string]ParamSpec, len(t.Parameters))
	for _, p := range t.Parameters {
		declared[p.Name] = p
	}

	for name := range args {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("unexpected argument '%s'", name)
		}
	}
	for _, p := range t.Parameters {
		if !p.Required {
			continue
		}
		if v, ok := args[p.Name]; !ok || v == "" {
			return fmt.Errorf("missing required argument '%s'", p.Name)
		}
	}
	return nil
}
