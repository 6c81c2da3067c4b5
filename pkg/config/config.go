package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру твоего config.yaml.
type AppConfig struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Gate      GateConfig      `yaml:"gate"`
	Loop      LoopConfig      `yaml:"loop"`
	Storage   StorageConfig   `yaml:"storage"`
	Models    ModelsConfig    `yaml:"models"`
	Tools     ToolsConfig     `yaml:"tools"`
	S3        S3Config        `yaml:"s3"`
	App       AppSpecific     `yaml:"app"`
}

// EmbeddingConfig — настройки энкодеров.
//
// Query- и tool-энкодер используют общую размерность, но разные seed:
// разные пространства дают разные проекции одного и того же текста.
type EmbeddingConfig struct {
	Dim       int    `yaml:"dim"`        // Размерность векторов (default: 768)
	Provider  string `yaml:"provider"`   // "simulated" или "openai"
	QuerySeed int64  `yaml:"query_seed"` // Seed query-энкодера (simulated)
	ToolSeed  int64  `yaml:"tool_seed"`  // Seed tool-энкодера (simulated)
	Model     string `yaml:"model"`      // Имя embedding-модели (openai)
}

// GateConfig — настройки tool-need gate.
type GateConfig struct {
	Threshold    float64 `yaml:"threshold"`    // Порог решения [0,1] (default: 0.5)
	Perturbation float64 `yaml:"perturbation"` // Амплитуда возмущения (default: 0.1)
}

// LoopConfig — настройки цикла рассуждения.
type LoopConfig struct {
	MaxSteps         int    `yaml:"max_steps"`         // Жёсткая граница числа шагов
	MinSteps         int    `yaml:"min_steps"`         // Маркер завершения активен начиная с этого шага
	CompletionMarker string `yaml:"completion_marker"` // Фраза завершения в transcript
}

// StorageConfig — настройки персистентности.
type StorageConfig struct {
	Path string `yaml:"path"` // Путь к sqlite базе; пусто — memory-only режим
}

// ToolsConfig — настройки инструментов.
type ToolsConfig struct {
	WebRateLimit  float64       `yaml:"web_rate_limit"` // Запросов в секунду для веб-инструментов
	WebBurst      int           `yaml:"web_burst"`      // Burst для rate limiter
	InvokeTimeout time.Duration `yaml:"invoke_timeout"` // Timeout одного вызова инструмента
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat"` // Алиас модели генерации по умолчанию
	Definitions map[string]ModelDef `yaml:"definitions"`  // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "scripted" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // Go умеет парсить строки вида "60s", "1m"
	BaseURL     string        `yaml:"base_url"`
}

// S3Config — настройки объектного хранилища для проектных файлов.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug bool `yaml:"debug"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML поверх дефолтов: отсутствующий в файле ключ
	// оставляет дефолт, а явный ноль (gate.threshold: 0,
	// gate.perturbation: 0) — легальное значение, не признак
	// "не задано".
	cfg := Default()
	if err := yaml.Unmarshal([]byte(contentWithEnv), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию.
//
// Используется когда файл конфигурации не задан: демо-режим работает
// без внешних сервисов. Load разбирает YAML поверх этой структуры.
func Default() *AppConfig {
	return &AppConfig{
		Embedding: EmbeddingConfig{
			Dim:       768,
			Provider:  "simulated",
			QuerySeed: 42,
			ToolSeed:  1337,
		},
		Gate: GateConfig{
			Threshold:    0.5,
			Perturbation: 0.1,
		},
		Loop: LoopConfig{
			MaxSteps:         10,
			MinSteps:         8,
			CompletionMarker: "Therefore, the answer is:",
		},
		Tools: ToolsConfig{
			WebRateLimit:  1,
			WebBurst:      3,
			InvokeTimeout: 30 * time.Second,
		},
	}
}

// validate проверяет обязательные поля.
//
// Ошибки конфигурации фатальны на старте: лучше упасть сразу, чем
// обнаружить кривой порог на десятом шаге цикла.
func (c *AppConfig) validate() error {
	if c.Embedding.Dim <= 0 {
		return fmt.Errorf("embedding.dim must be positive, got %d", c.Embedding.Dim)
	}
	switch c.Embedding.Provider {
	case "simulated", "openai":
	default:
		return fmt.Errorf("embedding.provider must be 'simulated' or 'openai', got '%s'", c.Embedding.Provider)
	}
	if c.Gate.Threshold < 0 || c.Gate.Threshold > 1 {
		return fmt.Errorf("gate.threshold must be in [0,1], got %g", c.Gate.Threshold)
	}
	if c.Loop.MaxSteps <= 0 {
		return fmt.Errorf("loop.max_steps must be positive, got %d", c.Loop.MaxSteps)
	}
	if c.Loop.MinSteps > c.Loop.MaxSteps {
		return fmt.Errorf("loop.min_steps (%d) cannot exceed loop.max_steps (%d)", c.Loop.MinSteps, c.Loop.MaxSteps)
	}
	if c.Models.DefaultChat != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
			return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
		}
	}
	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetChatModel возвращает конфигурацию модели по умолчанию или по имени.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}
