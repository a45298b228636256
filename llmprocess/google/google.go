// Package google provides an llmprocess.ChatModel adapter for Google's
// Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/race-explorer/racegraph/llmprocess"
)

// ChatModel implements llmprocess.ChatModel against Gemini.
type ChatModel struct {
	apiKey    string
	modelName string
	client    googleClient
}

type googleClient interface {
	generateContent(ctx context.Context, messages []llmprocess.Message, tools []llmprocess.ToolSpec) (llmprocess.ChatOut, error)
}

// NewChatModel returns a ChatModel for modelName, defaulting to
// gemini-2.5-flash.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
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

	out, err := m.client.generateContent(ctx, messages, tools)
	if err != nil {
		var safetyErr *SafetyFilterError
		if errors.As(err, &safetyErr) {
			return llmprocess.ChatOut{}, safetyErr
		}
		return llmprocess.ChatOut{}, err
	}
	return out, nil
}

type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) generateContent(ctx context.Context, messages []llmprocess.Message, tools []llmprocess.ToolSpec) (llmprocess.ChatOut, error) {
	if c.apiKey == "" {
		return llmprocess.ChatOut{}, errors.New("google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return llmprocess.ChatOut{}, fmt.Errorf("failed to create Google client: %w", err)
	}
	defer func() { _ = client.Close() }()

	genModel := client.GenerativeModel(c.modelName)
	if len(tools) > 0 {
		genModel.Tools = convertTools(tools)
	}

	resp, err := genModel.GenerateContent(ctx, convertMessages(messages)...)
	if err != nil {
		return llmprocess.ChatOut{}, fmt.Errorf("google API error: %w", err)
	}
	return convertResponse(resp), nil
}

func convertMessages(messages []llmprocess.Message) []genai.Part {
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	return parts
}

func convertTools(tools []llmprocess.ToolSpec) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, len(tools))
	for i, tool := range tools {
		declarations[i] = &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  convertSchema(tool.Schema),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

func convertSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}
	result := &genai.Schema{Type: genai.TypeObject}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		properties := make(map[string]*genai.Schema)
		for key, val := range props {
			propMap, ok := val.(map[string]interface{})
			if !ok {
				continue
			}
			propSchema := &genai.Schema{}
			if typeStr, ok := propMap["type"].(string); ok {
				propSchema.Type = convertTypeString(typeStr)
			}
			if desc, ok := propMap["description"].(string); ok {
				propSchema.Description = desc
			}
			properties[key] = propSchema
		}
		result.Properties = properties
	}
	if required, ok := schema["required"].([]string); ok {
		result.Required = required
	}
	return result
}

func convertResponse(resp *genai.GenerateContentResponse) llmprocess.ChatOut {
	out := llmprocess.ChatOut{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, llmprocess.ToolCall{Name: p.Name, Input: p.Args})
		}
	}
	return out
}

func convertTypeString(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

// SafetyFilterError reports that Gemini's safety filter blocked content.
// Check with errors.As to branch on Category.
type SafetyFilterError struct {
	reason   string
	category string
}

func (e *SafetyFilterError) Error() string { return "content blocked by safety filter: " + e.category }
func (e *SafetyFilterError) Category() string { return e.category }
func (e *SafetyFilterError) Reason() string   { return e.reason }
