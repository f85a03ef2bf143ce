// Package prompt assembles the message list sent on every turn.
package prompt

import (
	"strings"

	"github.com/minhyannv/pplx-chat-go/pkg/pplx"
)

// SystemInstruction keeps answers short and free of markdown so they read
// well in a terminal.
const SystemInstruction = "You are a command-line assistant. Provide concise, clear responses suitable for terminal output. " +
	"Use plain text formatting. For lists, use simple dashes or numbers. Avoid markdown or complex formatting."

// BuildMessages returns the system instruction, then history in order, then
// the new user query. history is not modified.
func BuildMessages(history []pplx.Message, query string) []pplx.Message {
	out := make([]pplx.Message, 0, len(history)+2)
	out = append(out, pplx.Message{Role: pplx.RoleSystem, Content: SystemInstruction})
	out = append(out, history...)
	out = append(out, pplx.Message{Role: pplx.RoleUser, Content: query})
	return out
}

// JoinQuery joins positional command-line tokens into one query.
func JoinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
