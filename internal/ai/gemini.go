package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Model is the text generation backend used by the assistant.
type Model interface {
	// Generate runs one prompt. A non-nil schema requests a JSON answer.
	Generate(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error)
	// NewChat opens a conversation that keeps its own history.
	NewChat(ctx context.Context, model, system string) (ChatSession, error)
}

// ChatSession is one ongoing assistant conversation.
type ChatSession interface {
	Send(ctx context.Context, message string) (string, error)
}

type geminiModel struct {
	client *genai.Client
}

// NewGeminiModel connects to the Gemini API with apiKey.
func NewGeminiModel(ctx context.Context, apiKey string) (Model, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiModel{client: client}, nil
}

func baseConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
}

func (m *geminiModel) Generate(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error) {
	cfg := baseConfig()
	if schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = schema
	}
	resp, err := m.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (m *geminiModel) NewChat(ctx context.Context, model, system string) (ChatSession, error) {
	cfg := baseConfig()
	cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	chat, err := m.client.Chats.Create(ctx, model, cfg, nil)
	if err != nil {
		return nil, err
	}
	return &geminiChat{chat: chat}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, message string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, *genai.NewPartFromText(message))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
