package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"school-assistant-be/internal/pkg/logger"
	"school-assistant-be/pkg/llm"
	"school-assistant-be/pkg/store"
)

const fallbackReply = "Sorry, I could not complete that request right now. Please try again."

// ToolNameLogin is the one operation whose success mutates session state.
const ToolNameLogin = "student_login"

// TurnOutcome is everything one user turn produced: the final reply and the
// operation results folded along the way, in execution order. Callers render
// the results (payload kinds) alongside the reply.
type TurnOutcome struct {
	Reply   string    `json:"reply"`
	Results []*Result `json:"results,omitempty"`
}

// Executor runs the bounded decision loop for one user turn. It owns no
// session storage; the caller passes state in and persists it after.
type Executor struct {
	llm      llm.LLMProvider
	registry *Registry
	maxTurns int
	log      logger.ILogger
}

func NewExecutor(provider llm.LLMProvider, registry *Registry, maxTurns int, log logger.ILogger) *Executor {
	if maxTurns <= 0 {
		maxTurns = 6
	}
	return &Executor{llm: provider, registry: registry, maxTurns: maxTurns, log: log}
}

// ExecuteTurn drives the model until it replies or the step cap is hit. The
// loop never surfaces a model or operation failure to the caller: malformed
// decisions become malformed-request results fed back to the model, and an
// unusable model (transport failure, cap exhausted) degrades to a fixed
// fallback reply. Login successes are folded into the session before the
// next step so the refreshed system prompt reflects them.
func (e *Executor) ExecuteTurn(ctx context.Context, sess *store.Session, history []llm.Message, userMessage string) *TurnOutcome {
	outcome := &TurnOutcome{}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	for turn := 0; turn < e.maxTurns; turn++ {
		prompt := BuildSystemPrompt(e.registry, sess)
		withSystem := append([]llm.Message{{Role: "system", Content: prompt}}, messages...)

		response, err := e.llm.Chat(ctx, withSystem)
		if err != nil {
			e.log.Error("agent", "model call failed", map[string]interface{}{
				"session_id": sess.ID, "turn": turn, "error": err.Error(),
			})
			outcome.Reply = fallbackReply
			return outcome
		}

		decision, err := ParseDecision(response)
		if err != nil {
			e.log.Warn("agent", "malformed model decision", map[string]interface{}{
				"session_id": sess.ID, "turn": turn, "error": err.Error(),
			})
			result := ErrorResult("", "", CodeMalformedRequest, err.Error())
			messages = e.foldResult(messages, response, result)
			continue
		}

		if decision.Action == ActionReply {
			outcome.Reply = decision.Reply
			return outcome
		}

		result := e.registry.Dispatch(ctx, decision.Tool, StringArgs(decision.Arguments), sess)

		if result.OK && decision.Tool == ToolNameLogin {
			e.applyLogin(sess, result)
		}

		e.log.Info("agent", "operation dispatched", map[string]interface{}{
			"session_id": sess.ID, "turn": turn, "tool": decision.Tool,
			"ok": result.OK, "code": result.Code,
		})

		outcome.Results = append(outcome.Results, result)
		messages = e.foldResult(messages, response, result)
	}

	e.log.Warn("agent", "turn cap reached without a reply", map[string]interface{}{
		"session_id": sess.ID, "max_turns": e.maxTurns,
	})
	outcome.Reply = fallbackReply
	return outcome
}

// ObservationMessage frames one operation result the way the loop feeds it
// back to the model. Replayed histories use the same framing so results from
// earlier turns stay readable to the model.
func ObservationMessage(result *Result) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		encoded = []byte(fmt.Sprintf(`{"ok":false,"code":%q}`, CodeRemoteCallFailed))
	}
	return fmt.Sprintf("Operation result:\n%s", string(encoded))
}

// foldResult appends the model's own request and the operation's outcome as
// an observation message, so the next step sees both.
func (e *Executor) foldResult(messages []llm.Message, modelResponse string, result *Result) []llm.Message {
	messages = append(messages, llm.Message{Role: "assistant", Content: modelResponse})
	return append(messages, llm.Message{Role: "user", Content: ObservationMessage(result)})
}

func (e *Executor) applyLogin(sess *store.Session, result *Result) {
	student := store.StudentIdentity{
		Sid:  payloadString(result.Payload, "sid"),
		Name: payloadString(result.Payload, "name"),
		Temp: payloadString(result.Payload, "temp"),
	}
	if student.Sid == "" || student.Temp == "" {
		e.log.Warn("agent", "login result missing identity fields", map[string]interface{}{
			"session_id": sess.ID,
		})
		return
	}
	sess.ApplyLogin(student)
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
