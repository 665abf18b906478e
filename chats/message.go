package chats

import (
	"encoding/json"

	"github.com/reusee/lud/tools"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation sent to the model. Content is
// either plain text or a list of structured blocks carrying tool calls
// and tool results.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

func Text(role string, text string) Message {
	return Message{
		Role:    role,
		Content: text,
	}
}

// ToolUse is the assistant turn that requested the calls, kept in the
// exchange so the model sees its own requests acknowledged.
func ToolUse(calls []ToolCall) Message {
	return Message{
		Role: RoleAssistant,
		Content: []map[string]any{
			{
				"type":       "tool_use",
				"tool_calls": calls,
			},
		},
	}
}

// ToolResultsMessage carries one block per result, in call order.
func ToolResultsMessage(results []ToolResult) Message {
	blocks := make([]map[string]any, 0, len(results))
	for _, result := range results {
		block := map[string]any{
			"type":        "tool_result",
			"tool_use_id": result.ToolCallID,
			"content":     result.Content,
		}
		if result.IsError {
			block["is_error"] = true
		}
		blocks = append(blocks, block)
	}
	return Message{
		Role:    RoleUser,
		Content: blocks,
	}
}

// ToolCall is produced only by the model, never by the user.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Args decodes the JSON argument payload. Malformed payloads decode to
// an empty argument object and the schema mismatch surfaces as a tool
// error instead of a dropped call.
func (c ToolCall) Args() (tools.Args, error) {
	if c.Function.Arguments == "" {
		return tools.Args{}, nil
	}
	var args tools.Args
	if err := json.Unmarshal([]byte(c.Function.Arguments), &args); err != nil {
		return tools.Args{}, err
	}
	if args == nil {
		args = tools.Args{}
	}
	return args, nil
}

type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

type Request struct {
	Model    string               `json:"model"`
	Messages []Message            `json:"messages"`
	Tools    []tools.CatalogEntry `json:"tools,omitempty"`
}

type Response struct {
	Content   string          `json:"content"`
	ToolCalls []ToolCall      `json:"tool_calls"`
	Usage     json.RawMessage `json:"usage"`
}
