// OpenAI-backed энкодер. Production замена SimulatedEncoder.

package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig — настройки OpenAI энкодера.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Для OpenAI-совместимых API (опционально)
	Model   string // Например, "text-embedding-3-small"
	Dim     int    // Ожидаемая размерность ответа
}

// OpenAIClient реализует Encoder через OpenAI Embeddings API.
//
// Проверяет что размерность ответа API совпадает с настроенной D —
// несовпадение означает неправильно настроенный деплой и возвращается
// как DimensionMismatchError (configuration-fatal, см. vector.go).
//
// Thread-safe: openai.Client использует HTTP client с connection pool.
type OpenAIClient struct {
	api   *openai.Client
	model openai.EmbeddingModel
	dim   int
}

// NewOpenAIClient создаёт OpenAI энкодер.
//
// Возвращает ошибку если Dim <= 0 или не задана модель.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if err := validateDim(cfg.Dim); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		api:   openai.NewClientWithConfig(apiCfg),
		model: openai.EmbeddingModel(cfg.Model),
		dim:   cfg.Dim,
	}, nil
}

// Dim возвращает настроенную размерность.
func (c *OpenAIClient) Dim() int {
	return c.dim
}

// Encode кодирует текст через Embeddings API.
func (c *OpenAIClient) Encode(ctx context.Context, text string) (Vector, error) {
	vecs, err := c.BatchEncode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// BatchEncode кодирует несколько текстов одним запросом к API.
//
// Порядок результатов совпадает с порядком входа (гарантия API:
// поле Index в ответе).
func (c *OpenAIClient) BatchEncode(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings api error: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings api returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	result := make([]Vector, len(texts))
	for _, item := range resp.Data {
		vec := make(Vector, len(item.Embedding))
		for i, x := range item.Embedding {
			vec[i] = float64(x)
		}
		if vec.Dim() != c.dim {
			return nil, &DimensionMismatchError{Want: c.dim, Got: vec.Dim()}
		}
		result[item.Index] = vec.Normalized()
	}

	return result, nil
}

// Ensure OpenAIClient implements Encoder
var _ Encoder = (*OpenAIClient)(nil)
