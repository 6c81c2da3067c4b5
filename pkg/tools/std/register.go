package std

import (
	"github.com/ilkoid/cotools-ai/pkg/s3storage"
	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// Options — зависимости стандартного набора.
type Options struct {
	// Web — общий rate limiter веб-инструментов; nil отключает лимит.
	Web *WebLimiter

	// Storage — S3 клиент для ProjectFileProcessor; nil включает
	// офлайн-режим.
	Storage s3storage.ClientInterface
}

// RegisterAll регистрирует стандартный набор инструментов в реестре.
//
// Набор соответствует стартовому наполнению каталога: каждое имя,
// которое retrieval может вернуть из seed-записей, резолвится в
// работающую capability.
func RegisterAll(registry *tools.Registry, opts Options) error {
	set := []tools.Tool{
		&WeatherTool{},
		&CapitalTool{},
		&SearchTool{},
		&CalculatorTool{},
		&TranslateTool{},
		NewWebSearchTool(opts.Web),
		NewNewsSearchTool(opts.Web),
		NewWebContentFetcherTool(opts.Web),
		NewProjectFileTool(opts.Storage),
	}
	for _, tool := range set {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
