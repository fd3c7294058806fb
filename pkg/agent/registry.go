package agent

import (
	"context"
	"fmt"

	"school-assistant-be/pkg/store"
)

// Registry is the fixed catalog of operations. Tools are registered once at
// startup; registration order is the order shown to the model.
type Registry struct {
	tools []Tool
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

func (r *Registry) Register(tool Tool) {
	if _, exists := r.index[tool.Name]; exists {
		return // first registration wins
	}
	r.index[tool.Name] = len(r.tools)
	r.tools = append(r.tools, tool)
}

func (r *Registry) Get(name string) *Tool {
	if i, ok := r.index[name]; ok {
		return &r.tools[i]
	}
	return nil
}

func (r *Registry) Tools() []Tool {
	return r.tools
}

// Dispatch validates and executes one operation request. It always returns a
// Result, never an error: unknown names, bad arguments and missing
// authentication become error results before any handler (and therefore any
// network call) runs.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]string, sess *store.Session) *Result {
	tool := r.Get(name)
	if tool == nil {
		return ErrorResult(name, "", CodeUnknownOperation, fmt.Sprintf("unknown operation '%s'", name))
	}

	if err := tool.validateArgs(args); err != nil {
		return ErrorResult(tool.Name, tool.Kind, CodeInvalidArguments, err.Error())
	}

	if tool.RequiresAuth && !sess.LoggedIn() {
		return ErrorResult(tool.Name, tool.Kind, CodeAuthRequired,
			"authentication required: ask the student to login with their id and password first")
	}

	return tool.Handler(ctx, sess, args)
}
