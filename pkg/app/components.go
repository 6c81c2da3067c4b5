// Package app собирает компоненты агента из конфигурации.
//
// Инициализация переиспользуема: CLI и TUI вызывают одну и ту же
// функцию Initialize и получают готовый к работе executor.
//
// Правило 6: entry points — initialization and orchestration only.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/catalog"
	"github.com/ilkoid/cotools-ai/pkg/chain"
	"github.com/ilkoid/cotools-ai/pkg/config"
	"github.com/ilkoid/cotools-ai/pkg/embedding"
	"github.com/ilkoid/cotools-ai/pkg/events"
	"github.com/ilkoid/cotools-ai/pkg/gate"
	"github.com/ilkoid/cotools-ai/pkg/llm"
	llmopenai "github.com/ilkoid/cotools-ai/pkg/llm/openai"
	"github.com/ilkoid/cotools-ai/pkg/s3storage"
	"github.com/ilkoid/cotools-ai/pkg/storage"
	"github.com/ilkoid/cotools-ai/pkg/tools"
	"github.com/ilkoid/cotools-ai/pkg/tools/std"
	"github.com/ilkoid/cotools-ai/pkg/utils"
)

// Components — собранные компоненты агента.
type Components struct {
	Config       *config.AppConfig
	QueryEncoder embedding.Encoder
	ToolEncoder  embedding.Encoder
	Catalog      *catalog.Catalog
	Registry     *tools.Registry
	Judge        *gate.Judge
	Generator    llm.Generator
	Executor     *chain.Executor
	Emitter      *events.ChanEmitter

	// Store — sqlite хранилище; nil в memory-only режиме.
	Store *storage.Store
}

// ConfigPathFinder определяет стратегию поиска config.yaml.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder реализует стандартную стратегию поиска config.yaml.
//
// Порядок поиска:
// 1. Флаг -config (если указан)
// 2. Текущая директория (./config.yaml)
// 3. Директория бинарника
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага -config, если указан
	ConfigFlag string
}

// FindConfigPath находит путь к config.yaml.
//
// Пустая строка означает "файл не найден" — вызывающий решает,
// использовать дефолты или падать.
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	if f.ConfigFlag != "" {
		return f.ConfigFlag
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}

	if execPath, err := os.Executable(); err == nil {
		cfgPath := filepath.Join(filepath.Dir(execPath), "config.yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath
		}
	}

	return ""
}

// LoadConfig загружает конфигурацию через finder.
//
// Отсутствие файла — не ошибка: демо-режим работает на дефолтах без
// внешних сервисов.
func LoadConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()
	if cfgPath == "" {
		return config.Default(), "", nil
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}

// Initialize создаёт и инициализирует все компоненты агента.
//
// Последовательность:
//  1. Энкодеры (simulated или openai по конфигурации)
//  2. Каталог: гидрация из sqlite (graceful degradation при отказе),
//     затем seed стартового набора
//  3. Реестр инструментов со стандартным набором
//  4. Gate, генератор, executor, emitter
//
// Правило 5: все собранные компоненты thread-safe.
func Initialize(cfg *config.AppConfig) (*Components, error) {
	utils.Info("Initializing components",
		"embedding_provider", cfg.Embedding.Provider,
		"storage_path", cfg.Storage.Path)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	queryEncoder, toolEncoder, err := buildEncoders(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.New(toolEncoder)
	if err != nil {
		return nil, err
	}

	// Хранилище опционально: отказ деградирует в memory-only режим.
	var store *storage.Store
	if cfg.Storage.Path != "" {
		store, err = storage.Open(cfg.Storage.Path)
		if err != nil {
			utils.Warn("Tool database unavailable, continuing with limited functionality", "error", err)
			store = nil
		}
	}

	if store != nil {
		if loaded, err := cat.LoadFromStore(ctx, store); err != nil {
			utils.Warn("Catalog hydration failed", "error", err)
		} else {
			utils.Debug("Catalog hydrated", "tools", loaded)
		}
	}

	if _, err := cat.Seed(ctx, nil); err != nil {
		return nil, fmt.Errorf("seed tool catalog: %w", err)
	}

	if store != nil {
		if _, err := cat.PersistToStore(ctx, store); err != nil {
			utils.Warn("Catalog persistence failed", "error", err)
		}
	}

	registry := tools.NewRegistry()
	registry.SetDefaultTimeout(cfg.Tools.InvokeTimeout)

	var s3client s3storage.ClientInterface
	if cfg.S3.Endpoint != "" && cfg.S3.Bucket != "" {
		client, err := s3storage.New(cfg.S3)
		if err != nil {
			utils.Warn("S3 storage unavailable, project tool runs offline", "error", err)
		} else {
			s3client = client
		}
	}

	if err := std.RegisterAll(registry, std.Options{
		Web:     std.NewWebLimiter(cfg.Tools.WebRateLimit, cfg.Tools.WebBurst),
		Storage: s3client,
	}); err != nil {
		return nil, fmt.Errorf("register standard tools: %w", err)
	}

	judge, err := gate.NewJudge(cfg.Gate.Threshold, gate.WithPerturbation(cfg.Gate.Perturbation))
	if err != nil {
		return nil, err
	}

	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}

	executor, err := chain.NewExecutor(judge, generator, queryEncoder, cat, registry, chain.LoopConfig{
		MaxSteps:         cfg.Loop.MaxSteps,
		MinSteps:         cfg.Loop.MinSteps,
		CompletionMarker: cfg.Loop.CompletionMarker,
	})
	if err != nil {
		return nil, err
	}

	emitter := events.NewChanEmitter(64)
	executor.SetEmitter(emitter)
	if store != nil {
		executor.SetLogger(store)
	}

	return &Components{
		Config:       cfg,
		QueryEncoder: queryEncoder,
		ToolEncoder:  toolEncoder,
		Catalog:      cat,
		Registry:     registry,
		Judge:        judge,
		Generator:    generator,
		Executor:     executor,
		Emitter:      emitter,
		Store:        store,
	}, nil
}

// Close освобождает ресурсы компонентов.
func (c *Components) Close() {
	if c.Emitter != nil {
		c.Emitter.Close()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			utils.Warn("Store close failed", "error", err)
		}
	}
}

// buildEncoders создаёт пару энкодеров согласно конфигурации.
//
// Query- и tool-энкодер разделены: у каждого своё пространство
// проекции (разные seed у simulated, одна модель у openai).
func buildEncoders(cfg *config.AppConfig) (query, tool embedding.Encoder, err error) {
	switch cfg.Embedding.Provider {
	case "simulated":
		query, err = embedding.NewSimulatedEncoder(cfg.Embedding.Dim, cfg.Embedding.QuerySeed)
		if err != nil {
			return nil, nil, err
		}
		tool, err = embedding.NewSimulatedEncoder(cfg.Embedding.Dim, cfg.Embedding.ToolSeed)
		if err != nil {
			return nil, nil, err
		}
		return query, tool, nil

	case "openai":
		modelDef, ok := cfg.GetChatModel("")
		if !ok {
			return nil, nil, fmt.Errorf("embedding.provider 'openai' requires a default model definition")
		}
		client, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
			APIKey:  modelDef.APIKey,
			BaseURL: modelDef.BaseURL,
			Model:   cfg.Embedding.Model,
			Dim:     cfg.Embedding.Dim,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil

	default:
		return nil, nil, fmt.Errorf("unknown embedding provider '%s'", cfg.Embedding.Provider)
	}
}

// buildGenerator создаёт генератор согласно конфигурации моделей.
//
// Без настроенной модели используется сценарный генератор — демо
// работает офлайн.
func buildGenerator(cfg *config.AppConfig) (llm.Generator, error) {
	modelDef, ok := cfg.GetChatModel("")
	if !ok || modelDef.Provider == "" || modelDef.Provider == "scripted" {
		return llm.NewScriptedGenerator(nil), nil
	}

	switch modelDef.Provider {
	case "openai":
		return llmopenai.NewClient(modelDef), nil
	default:
		return nil, fmt.Errorf("unknown model provider '%s'", modelDef.Provider)
	}
}
