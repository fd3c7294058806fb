package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decision actions.
const (
	ActionCall  = "call"
	ActionReply = "reply"
)

// Decision is the structured output the model must produce each step: either
// a final reply or a request to invoke one operation.
type Decision struct {
	Action    string                 `json:"action"`
	Tool      string                 `json:"tool,omitempty"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Reply     string                 `json:"reply,omitempty"`
}

// ParseDecision extracts the model's decision from its raw output. Output
// with no JSON object at all is treated as a plain final reply; a JSON object
// that does not match the protocol is an error the caller feeds back into the
// conversation as a malformed-request result.
func ParseDecision(response string) (*Decision, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		reply := strings.TrimSpace(response)
		if reply == "" {
			return nil, fmt.Errorf("empty model response")
		}
		return &Decision{Action: ActionReply, Reply: reply}, nil
	}

	var decision Decision
	if err := json.Unmarshal([]byte(jsonContent), &decision); err != nil {
		return nil, fmt.Errorf("decision JSON unmarshal failed: %w", err)
	}

	decision.Action = strings.ToLower(strings.TrimSpace(decision.Action))
	switch decision.Action {
	case ActionReply:
		if strings.TrimSpace(decision.Reply) == "" {
			return nil, fmt.Errorf("reply decision without reply text")
		}
	case ActionCall:
		if strings.TrimSpace(decision.Tool) == "" {
			return nil, fmt.Errorf("call decision without a tool name")
		}
	default:
		return nil, fmt.Errorf("unknown decision action '%s'", decision.Action)
	}

	return &decision, nil
}

// StringArgs flattens the model's loosely typed arguments into the string map
// the tool schemas expect. Numbers arrive as float64 from encoding/json;
// whole values are rendered without a decimal point (term numbers, dates).
func StringArgs(args map[string]interface{}) map[string]string {
	out := make(map[string]string, len(args))
	for k, v := range args {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			if t == float64(int64(t)) {
				out[k] = strconv.FormatInt(int64(t), 10)
			} else {
				out[k] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		case bool:
			out[k] = strconv.FormatBool(t)
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprintf("%v", t)
		}
	}
	return out
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
