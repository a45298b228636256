// Package anthropic provides an llmprocess.ChatModel adapter for
// Anthropic's Claude API.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/race-explorer/racegraph/llmprocess"
)

// ChatModel implements llmprocess.ChatModel against Claude.
type ChatModel struct {
	apiKey    string
	modelName string
	client    anthropicClient
}

type anthropicClient interface {
	createMessage(ctx context.Context, systemPrompt string, messages []llmprocess.Message, tools []llmprocess.ToolSpec) (llmprocess.ChatOut, error)
}

// NewChatModel returns a ChatModel for modelName, defaulting to Sonnet when
// modelName is empty.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = "claude-sonnet-4-5-20250929"
	}
	return &ChatModel{
		apiKey:    apiKey,
		modelName: modelName,
		client:    &defaultClient{apiKey: apiKey, modelName: modelName},
	}
}

// Chat implements llmprocess.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []llmprocess.Message, tools []llmprocess.ToolSpec) (llmprocess.ChatOut, error) {
	if ctx.Err() != nil {
		return llmprocess.ChatOut{}, ctx.Err()
	}

	systemPrompt, rest := extractSystemPrompt(messages)

	out, err := m.client.createMessage(ctx, systemPrompt, rest, tools)
	if err != nil {
		var apiErr *anthropicError
		if errors.As(err, &apiErr) {
			return llmprocess.ChatOut{}, apiErr
		}
		return llmprocess.ChatOut{}, err
	}
	return out, nil
}

func extractSystemPrompt(messages []llmprocess.Message) (string, []llmprocess.Message) {
	var systemPrompt string
	var rest []llmprocess.Message
	for _, msg := range messages {
		if msg.Role == llmprocess.RoleSystem {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += msg.Content
			continue
		}
		rest = append(rest, msg)
	}
	return systemPrompt, rest
}

type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) createMessage(ctx context.Context, systemPrompt string, messages []llmprocess.Message, tools []llmprocess.ToolSpec) (llmprocess.ChatOut, error) {
	if c.apiKey == "" {
		return llmprocess.ChatOut{}, errors.New("anthropic API key is required")
	}

	client := anthropicsdk.NewClient(option.WithAPIKey(c.apiKey))

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.modelName),
		Messages:  convertMessages(messages),
		MaxTokens: 4096,
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}
	if len(tools) > 0 {
		params.Tools = convertTools(tools)
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return llmprocess.ChatOut{}, fmt.Errorf("anthropic API error: %w", err)
	}
	return convertResponse(resp), nil
}

func convertMessages(messages []llmprocess.Message) []anthropicsdk.MessageParam {
	result := make([]anthropicsdk.MessageParam, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case llmprocess.RoleAssistant:
			result[i] = anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(msg.Content))
		default:
			result[i] = anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(msg.Content))
		}
	}
	return result
}

func convertTools(tools []llmprocess.ToolSpec) []anthropicsdk.ToolUnionParam {
	result := make([]anthropicsdk.ToolUnionParam, len(tools))
	for i, tool := range tools {
		var properties any
		var required []string
		if tool.Schema != nil {
			if props, ok := tool.Schema["properties"]; ok {
				properties = props
			}
			if req, ok := tool.Schema["required"].([]string); ok {
				required = req
			} else if req, ok := tool.Schema["required"].([]interface{}); ok {
				required = make([]string, 0, len(req))
				for _, v := range req {
					if s, ok := v.(string); ok {
						required = append(required, s)
					}
				}
			}
		}
		result[i] = anthropicsdk.ToolUnionParam{
			OfTool: &anthropicsdk.ToolParam{
				Name:        tool.Name,
				Description: anthropicsdk.String(tool.Description),
				InputSchema: anthropicsdk.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		}
	}
	return result
}

func convertResponse(resp *anthropicsdk.Message) llmprocess.ChatOut {
	out := llmprocess.ChatOut{}
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropicsdk.TextBlock:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += b.Text
		case anthropicsdk.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, llmprocess.ToolCall{
				Name:  b.Name,
				Input: convertToolInput(b.Input),
			})
		}
	}
	return out
}

func convertToolInput(input interface{}) map[string]interface{} {
	if input == nil {
		return nil
	}
	if m, ok := input.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{"_raw": input}
}

// anthropicError carries an Anthropic API error category through
// errors.As, mirroring the SDK's error taxonomy (authentication_error,
// rate_limit_error, overloaded_error, ...).
type anthropicError struct {
	Type    string
	Message string
}

func (e *anthropicError) Error() string { return e.Type + ": " + e.Message }
