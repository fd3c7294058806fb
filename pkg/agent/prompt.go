package agent

import (
	"fmt"
	"strings"

	"school-assistant-be/pkg/store"
)

// BuildSystemPrompt renders the per-step system message: who the assistant
// is, the current session state, the operation catalog and the JSON decision
// protocol. Session state is re-rendered every step so the model always sees
// the result of a login folded earlier in the same turn.
func BuildSystemPrompt(registry *Registry, sess *store.Session) string {
	var prompt strings.Builder

	prompt.WriteString("<system>\n")
	prompt.WriteString("You are the assistant for a school information portal. You help students and parents\n")
	prompt.WriteString("access academic records and answer questions about uploaded documents.\n")
	prompt.WriteString("You act by choosing operations; you never invent academic data yourself.\n")
	prompt.WriteString("</system>\n\n")

	prompt.WriteString("<session_state>\n")
	if sess.LoggedIn() {
		prompt.WriteString("LOGGED_IN\n")
		prompt.WriteString(fmt.Sprintf("Name: %s\n", sess.Student.Name))
		prompt.WriteString(fmt.Sprintf("SID: %s\n", sess.Student.Sid))
		prompt.WriteString("Operations use this identity automatically. Do NOT ask for credentials again.\n")
	} else {
		prompt.WriteString("NOT_LOGGED_IN\n")
		prompt.WriteString("For results, homework, syllabus or worksheets, ask for the student id and\n")
		prompt.WriteString("password first, then call student_login. Calendar and document questions\n")
		prompt.WriteString("need no login.\n")
	}
	if len(sess.SavedStudents) > 0 {
		prompt.WriteString("Previously logged in this conversation:\n")
		for i, saved := range sess.SavedStudents {
			prompt.WriteString(fmt.Sprintf("  %d. %s (SID: %s)\n", i+1, saved.Name, saved.Sid))
		}
	}
	prompt.WriteString("</session_state>\n\n")

	prompt.WriteString("<operations>\n")
	for _, tool := range registry.Tools() {
		prompt.WriteString(fmt.Sprintf("- %s: %s", tool.Name, tool.Description))
		if tool.RequiresAuth {
			prompt.WriteString(" (requires login)")
		}
		prompt.WriteString("\n")
		for _, p := range tool.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			prompt.WriteString(fmt.Sprintf("    %s (%s, %s): %s\n", p.Name, p.Type, req, p.Description))
		}
	}
	prompt.WriteString("</operations>\n\n")

	prompt.WriteString("<protocol>\n")
	prompt.WriteString("Answer with EXACTLY ONE JSON object and nothing else.\n")
	prompt.WriteString("To invoke an operation:\n")
	prompt.WriteString(`  {"action": "call", "tool": "<name>", "arguments": {"<param>": "<value>"}}`)
	prompt.WriteString("\n")
	prompt.WriteString("To answer the user directly (always do this after operation results arrive):\n")
	prompt.WriteString(`  {"action": "reply", "reply": "<your answer>"}`)
	prompt.WriteString("\n")
	prompt.WriteString("Operation results appear in the conversation as observation messages.\n")
	prompt.WriteString("If a result reports authentication_required, ask the user to login instead of retrying.\n")
	prompt.WriteString("Dates accept YYYY-MM-DD or the words today, tomorrow, yesterday.\n")
	prompt.WriteString("Keep replies short and specific.\n")
	prompt.WriteString("</protocol>\n")

	return prompt.String()
}
