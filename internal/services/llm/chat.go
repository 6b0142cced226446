package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Message is one entry in a chat conversation. Role is "system", "user",
// "assistant", or "tool"; ToolCallID and Name identify tool result messages.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a tool invocation issued by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDef describes one callable tool advertised to the model. Parameters is
// a JSON Schema object.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ChatOptions customize a single Chat or CompleteJSON request.
type ChatOptions struct {
	// Model overrides the client's default model.
	Model string
	// Temperature defaults to 0 for deterministic agent behaviour.
	Temperature float64
	// WebSearch enables the provider's live web search plugin.
	WebSearch bool
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Tools          []wireTool        `json:"tools,omitempty"`
	ToolChoice     string            `json:"tool_choice,omitempty"`
	Plugins        []wirePlugin      `json:"plugins,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type wirePlugin struct {
	ID string `json:"id"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		// Some providers mistakenly return the streaming schema (delta) even
		// when stream=false, so tolerate it as a fallback.
		Delta        chatMessage `json:"delta"`
		Text         string      `json:"text"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatMessage struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls"`
	Refusal   string     `json:"refusal"`
}

// Chat sends a conversation with optional tool definitions and returns the
// assistant's reply. A reply with tool calls and no text content is valid;
// the orchestrator executes the calls and continues the conversation.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolDef, opts ChatOptions) (Message, error) {
	var empty Message
	if len(messages) == 0 {
		return empty, errors.New("llm chat: messages required")
	}
	if !c.Configured() {
		return empty, errors.New("llm chat: api key required")
	}
	payload := chatRequest{
		Model:       c.model(opts.Model),
		Messages:    messages,
		Temperature: opts.Temperature,
	}
	for _, tool := range tools {
		payload.Tools = append(payload.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	if len(payload.Tools) > 0 {
		payload.ToolChoice = "auto"
	}
	if opts.WebSearch {
		payload.Plugins = []wirePlugin{{ID: "web"}}
	}

	completion, err := c.requestWithRetry(ctx, payload, "llm chat")
	if err != nil {
		return empty, err
	}
	return extractAssistantMessage(completion), nil
}

// CompleteJSON issues a JSON-only completion with the supplied prompts and
// returns the raw JSON payload produced by the model.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, opts ChatOptions) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New("llm complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if !c.Configured() {
		return "", errors.New("llm complete: api key required")
	}
	payload := chatRequest{
		Model: c.model(opts.Model),
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    opts.Temperature,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	if opts.WebSearch {
		payload.Plugins = []wirePlugin{{ID: "web"}}
	}

	completion, err := c.requestWithRetry(ctx, payload, "llm complete")
	if err != nil {
		return "", err
	}
	return extractContent(completion), nil
}

func (c *Client) model(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	return c.cfg.Model
}

func usable(completion chatResponse) bool {
	for _, choice := range completion.Choices {
		if strings.TrimSpace(choice.Message.Content) != "" ||
			strings.TrimSpace(choice.Delta.Content) != "" ||
			strings.TrimSpace(choice.Text) != "" {
			return true
		}
		if len(choice.Message.ToolCalls) > 0 || len(choice.Delta.ToolCalls) > 0 {
			return true
		}
	}
	return false
}

func extractAssistantMessage(completion chatResponse) Message {
	msg := Message{Role: "assistant"}
	for _, choice := range completion.Choices {
		if msg.Content == "" {
			msg.Content = firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text)
		}
		if len(msg.ToolCalls) == 0 {
			if len(choice.Message.ToolCalls) > 0 {
				msg.ToolCalls = choice.Message.ToolCalls
			} else if len(choice.Delta.ToolCalls) > 0 {
				msg.ToolCalls = choice.Delta.ToolCalls
			}
		}
		if msg.Content != "" || len(msg.ToolCalls) > 0 {
			break
		}
	}
	return msg
}

func extractContent(completion chatResponse) string {
	for _, choice := range completion.Choices {
		if content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); content != "" {
			return content
		}
		for _, call := range choice.Message.ToolCalls {
			if args := strings.TrimSpace(call.Function.Arguments); args != "" {
				return args
			}
		}
	}
	return ""
}

func firstFinishReason(completion chatResponse) string {
	for _, choice := range completion.Choices {
		if reason := strings.TrimSpace(choice.FinishReason); reason != "" {
			return reason
		}
	}
	return ""
}

func firstRefusal(completion chatResponse) string {
	for _, choice := range completion.Choices {
		if refusal := firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal); refusal != "" {
			return refusal
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
