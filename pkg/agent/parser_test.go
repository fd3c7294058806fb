package agent

import (
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantErr    bool
		wantAction string
		wantTool   string
		wantReply  string
	}{
		{
			name:       "plain text is a reply",
			response:   "Your homework for today is maths page 12.",
			wantAction: ActionReply,
			wantReply:  "Your homework for today is maths page 12.",
		},
		{
			name:       "reply decision",
			response:   `{"action": "reply", "reply": "Hello!"}`,
			wantAction: ActionReply,
			wantReply:  "Hello!",
		},
		{
			name:       "call decision",
			response:   `{"action": "call", "tool": "get_calendar"}`,
			wantAction: ActionCall,
			wantTool:   "get_calendar",
		},
		{
			name:       "call decision wrapped in prose",
			response:   "Sure, let me check.\n{\"action\": \"call\", \"tool\": \"get_syllabus\", \"arguments\": {}}\nDone.",
			wantAction: ActionCall,
			wantTool:   "get_syllabus",
		},
		{
			name:       "uppercase action is normalized",
			response:   `{"action": "REPLY", "reply": "ok"}`,
			wantAction: ActionReply,
			wantReply:  "ok",
		},
		{
			name:     "broken JSON",
			response: `{"action": "call", "tool": `,
			wantErr:  true,
		},
		{
			name:     "unknown action",
			response: `{"action": "jump"}`,
			wantErr:  true,
		},
		{
			name:     "call without tool",
			response: `{"action": "call"}`,
			wantErr:  true,
		},
		{
			name:     "reply without text",
			response: `{"action": "reply"}`,
			wantErr:  true,
		},
		{
			name:     "empty response",
			response: "   ",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := ParseDecision(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", decision)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", decision.Action, tt.wantAction)
			}
			if decision.Tool != tt.wantTool {
				t.Errorf("tool = %q, want %q", decision.Tool, tt.wantTool)
			}
			if decision.Reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", decision.Reply, tt.wantReply)
			}
		})
	}
}

func TestStringArgs(t *testing.T) {
	got := StringArgs(map[string]interface{}{
		"term":  float64(2),
		"score": 1.5,
		"flag":  true,
		"date":  "2026-03-01",
		"empty": nil,
	})

	want := map[string]string{
		"term":  "2",
		"score": "1.5",
		"flag":  "true",
		"date":  "2026-03-01",
		"empty": "",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("arg %q = %q, want %q", k, got[k], v)
		}
	}
}
