package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

const systemPrompt = "You are DocuBot, an intelligent assistant for document summaries. " +
	"Answer the user's question clearly, in one or two short sentences, without extra details. " +
	"Use simple, human-friendly language."

// Answerer produces an answer to a question grounded in a document summary.
type Answerer interface {
	Answer(ctx context.Context, summary, question string) (string, error)
}

// OllamaAnswerer generates answers with a local Ollama chat model.
type OllamaAnswerer struct {
	llm llms.Model
}

// NewOllamaAnswerer connects to the Ollama server.
func NewOllamaAnswerer(baseURL, model string) (*OllamaAnswerer, error) {
	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize chat model: %w", err)
	}
	return &OllamaAnswerer{llm: llm}, nil
}

// Answer sends the summary and question to the model and returns the trimmed
// first choice.
func (a *OllamaAnswerer) Answer(ctx context.Context, summary, question string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman,
			fmt.Sprintf("Document data:\n%s\n\nQuestion:\n%s\n\nAnswer:", summary, question)),
	}

	response, err := a.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
