package chats

import (
	"context"
	"fmt"
	"strings"

	"github.com/reusee/lud/tools"
)

const contextFileName = "Lud.md"

func (l *Loop) systemPrompt(ctx context.Context) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		"You are Lud, a helpful assistant with access to the user's notes at %s. "+
			"You can read files and search the notes to answer questions about them. "+
			"Be concise and helpful.",
		l.rootDesc,
	)
	b.WriteString(
		"\n\nYou have access to conversation history with this user. " +
			"Recent messages are included below. For older conversations, " +
			"search in .lud/conversations/ within the notes.",
	)
	if content := l.contextFile(ctx); content != "" {
		b.WriteString("\n\n## Notes Context (from Lud.md)\n\n")
		b.WriteString(content)
	}
	return b.String()
}

// contextFile loads Lud.md through the tool backend so a remote setup
// picks it up from the server's root, not this machine.
func (l *Loop) contextFile(ctx context.Context) string {
	outcome := l.executor.Execute(ctx, "read_file", tools.Args{
		"path": contextFileName,
	})
	if outcome.IsError() {
		return ""
	}
	return outcome.Content
}
