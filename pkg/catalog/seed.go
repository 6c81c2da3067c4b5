// Начальное наполнение каталога.

package catalog

import (
	"context"
	"errors"
)

// SeedTool — инструмент из стартового набора.
type SeedTool struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// DefaultSeedTools возвращает стартовый набор инструментов.
//
// Описания — внешний контракт retrieval: по ним считаются эмбеддинги,
// поэтому менять формулировки — значит менять поведение поиска.
func DefaultSeedTools() []SeedTool {
	return []SeedTool{
		{Name: "WeatherAPI", Description: "Get current weather information for a location."},
		{Name: "CapitalFinder", Description: "Find the capital city of a country."},
		{Name: "SearchAPI", Description: "Search the web for information on a topic."},
		{Name: "Calculator", Description: "Perform mathematical calculations and solve equations."},
		{Name: "TranslateAPI", Description: "Translate text between different languages."},
		{Name: "WebSearch", Description: "Search the web for current information on any topic."},
		{Name: "NewsSearch", Description: "Search for recent news articles on a topic."},
		{Name: "WebContentFetcher", Description: "Fetch and extract text content from a web page URL."},
		{Name: "ProjectFileProcessor", Description: "Process and analyze project schedule files (MPP, XER, P6XML) for tasks, resources and critical path."},
	}
}

// Seed регистрирует стартовый набор инструментов.
//
// Идемпотентна: уже существующие имена пропускаются молча. Возвращает
// число фактически добавленных записей.
func (c *Catalog) Seed(ctx context.Context, seeds []SeedTool) (int, error) {
	if seeds == nil {
		seeds = DefaultSeedTools()
	}

	added := 0
	for _, s := range seeds {
		if _, err := c.Register(ctx, s.Name, s.Description); err != nil {
			var dup *DuplicateToolError
			if errors.As(err, &dup) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}
