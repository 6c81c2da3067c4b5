// Package openai реализует адаптер генератора для OpenAI-совместимых API.
//
// Соблюдает правило 4 манифеста: цикл рассуждения работает только
// через интерфейс llm.Generator, о конкретном SDK он не знает.
package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ilkoid/cotools-ai/pkg/config"
	"github.com/ilkoid/cotools-ai/pkg/gate"
	"github.com/ilkoid/cotools-ai/pkg/llm"
	"github.com/ilkoid/cotools-ai/pkg/utils"
)

// systemPrompt — инструкция модели продолжать рассуждение приращениями.
const systemPrompt = "You are a step-by-step reasoning engine. " +
	"Continue the reasoning transcript with ONE short next step. " +
	"Do not repeat the transcript. When the reasoning is complete, " +
	"start your step with \"Therefore, the answer is:\"."

// Client реализует интерфейс llm.Generator для OpenAI-совместимых API.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую для упрощения создания клиентов через factory.
// Использует APIKey из конфигурации для аутентификации.
//
// Правило 2: Все настройки из конфигурации, никакого хардкода.
func NewClient(modelDef config.ModelDef) *Client {
	// Поддержка custom BaseURL для non-OpenAI провайдеров (Zai, DeepSeek и т.д.)
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       modelDef.ModelName,
		maxTokens:   modelDef.MaxTokens,
		temperature: float32(modelDef.Temperature),
	}
}

// NextIncrement запрашивает у модели следующий фрагмент рассуждения.
//
// Transcript передаётся целиком как user-сообщение: модель видит весь
// накопленный контекст, включая вшитые результаты инструментов, и
// продолжает с того места, где transcript обрывается.
//
// Правило 7: Все ошибки возвращаются, никаких panic.
func (c *Client) NextIncrement(ctx context.Context, step int, transcript string) (string, error) {
	startTime := time.Now()

	utils.Debug("LLM increment requested",
		"model", c.model,
		"step", step,
		"transcript_length", len(transcript))

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	increment := resp.Choices[0].Message.Content

	utils.Info("LLM increment received",
		"model", c.model,
		"step", step,
		"content_length", len(increment),
		"duration_ms", time.Since(startTime).Milliseconds())

	return increment, nil
}

// StateSnapshot возвращает transcript как текстовый снимок.
//
// Chat API не отдаёт hidden state модели, поэтому снимком служит сам
// накопленный контекст.
func (c *Client) StateSnapshot(_ context.Context, transcript string) gate.Snapshot {
	return gate.TextSnapshot{Text: transcript}
}

// Compile-time проверка реализации интерфейса.
var _ llm.Generator = (*Client)(nil)
