package brain

import (
	"context"
	"encoding/json"
)

// Provider abstracts the AI API (Claude, Gemini, etc.).
type Provider interface {
	Send(ctx context.Context, systemPrompt string, history []Message) (*Response, error)
}

// Role says who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a provider-agnostic conversation turn. A user turn carries either
// Text or ToolResults; an assistant turn may carry both Text and ToolCalls.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolCall is a request from the model to invoke a tool.
type ToolCall struct {
	ID    string // Gemini may leave this empty; the name is used instead
	Name  string
	Input json.RawMessage
}

// ToolResult answers one ToolCall.
type ToolResult struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

// Response is what a provider returns from a single Send call. Done is false
// while the model is waiting on tool results.
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Done      bool
}

// Tool describes a function the model may call, independent of any provider's
// schema types. Every parameter is a string.
type Tool struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ToolParam is one string argument of a Tool.
type ToolParam struct {
	Name        string
	Description string
	Enum        []string
	Required    bool
}

func (t Tool) required() []string {
	var names []string
	for _, p := range t.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

const doActionName = "do_action"

// doActionTool lets the model make the pet do something. It goes through the
// same rules as a button press, so it may be refused.
func doActionTool() Tool {
	return Tool{
		Name:        doActionName,
		Description: "Make the pet do something: pet, feed, swim, rest, sleep or roam. The same cooldowns and rules apply as when the owner presses the button, so the action may be refused.",
		Params: []ToolParam{{
			Name:        "action",
			Description: "The action to perform",
			Enum:        actionNames(),
			Required:    true,
		}},
	}
}
