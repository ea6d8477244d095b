// Package answer implements question answering over page images with an
// OpenAI-compatible vision chat completion endpoint.
package answer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/docsight/docsight/internal/metrics"
)

// DefaultTimeout bounds one chat completion round trip.
const DefaultTimeout = 2 * time.Minute

const defaultAnswer = "К сожелению, у меня нет ответа"

const systemPrompt = "You are a helpful assistant"

const userPromptFormat = `
Please answer the following question using only the information visible in the provided image.
Do not use any of your own knowledge, training data, or external sources.
Base your response solely on the content depicted within the image.
If there is no relation with question and image, you can respond with "%s".
Answer in Russian language.

User's question: %s
`

// OpenAI answers questions by sending page images and an instruction to a
// vision-capable chat model. Implements answer.Answerer from the domain.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates an answerer against an OpenAI-compatible endpoint.
// baseURL may be empty for the public API.
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) OpenAI {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Question sends the images in the given order followed by the instruction
// and returns the model's answer. The image order is the caller's relevance
// ranking and is preserved on the wire.
func (o OpenAI) Question(ctx context.Context, prompt string, images [][]byte) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: fmt.Sprintf(userPromptFormat, defaultAnswer, prompt),
	})

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	metrics.ObserveDependency("llm", time.Since(start))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}

	o.logger.Debug("answered question", "model", o.model, "images", len(images))
	return resp.Choices[0].Message.Content, nil
}
