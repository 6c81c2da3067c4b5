// Package std содержит стандартный набор инструментов агента.
//
// Каждый инструмент реализует tools.Tool: принимает сырой JSON с
// параметрами и возвращает текстовый результат. Имена и описания
// совпадают со стартовым набором каталога — по описаниям считаются
// эмбеддинги retrieval.
//
// WeatherAPI, CapitalFinder, SearchAPI и TranslateAPI — симулированные
// реализации для офлайн-демо: формат ответов стабилен и на нём можно
// строить тесты цикла.
package std

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// WeatherTool возвращает сводку погоды для локации.
type WeatherTool struct{}

// Definition возвращает описание инструмента.
func (t *WeatherTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "WeatherAPI",
		Description: "Get current weather information for a location.",
	}
}

// Execute возвращает сводку погоды.
//
// Параметры: {"location": string, "date": string (опционально)}.
func (t *WeatherTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var args struct {
		Location string `json:"location"`
		Date     string `json:"date"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid weather parameters: %w", err)
	}
	if args.Location == "" {
		return "", fmt.Errorf("weather lookup requires a location")
	}

	switch args.Date {
	case "", "yesterday":
		return fmt.Sprintf("Weather in %s yesterday: Cloudy, 65°F", args.Location), nil
	case "today":
		return fmt.Sprintf("Weather in %s today: Sunny, 72°F", args.Location), nil
	default:
		return fmt.Sprintf("Weather in %s on %s: Data not available", args.Location, args.Date), nil
	}
}

// capitals — справочные данные для демонстрации.
var capitals = map[string]string{
	"france":         "Paris",
	"germany":        "Berlin",
	"italy":          "Rome",
	"spain":          "Madrid",
	"united kingdom": "London",
	"usa":            "Washington D.C.",
	"canada":         "Ottawa",
	"japan":          "Tokyo",
	"china":          "Beijing",
	"australia":      "Canberra",
}

// CapitalTool находит столицу страны.
type CapitalTool struct{}

// Definition возвращает описание инструмента.
func (t *CapitalTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "CapitalFinder",
		Description: "Find the capital city of a country.",
	}
}

// Execute возвращает столицу страны.
//
// Параметры: {"country": string}. Неизвестная страна — не ошибка:
// результат "not found" вшивается в transcript, цикл продолжается.
func (t *CapitalTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var args struct {
		Country string `json:"country"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid capital parameters: %w", err)
	}
	if args.Country == "" {
		return "", fmt.Errorf("capital lookup requires a country")
	}

	country := strings.ToLower(args.Country)
	title := titleCase(country)
	if capital, ok := capitals[country]; ok {
		return fmt.Sprintf("The capital of %s is %s", title, capital), nil
	}
	return fmt.Sprintf("Capital information for %s not found", title), nil
}

// SearchTool — упрощённый веб-поиск.
type SearchTool struct{}

// Definition возвращает описание инструмента.
func (t *SearchTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "SearchAPI",
		Description: "Search the web for information on a topic.",
	}
}

// Execute возвращает результат поиска.
func (t *SearchTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid search parameters: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("search requires a query")
	}
	return fmt.Sprintf("Search results for '%s': Found relevant information about %s.", args.Query, args.Query), nil
}

// TranslateTool переводит текст между языками.
type TranslateTool struct{}

// Definition возвращает описание инструмента.
func (t *TranslateTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "TranslateAPI",
		Description: "Translate text between different languages.",
	}
}

// Execute возвращает перевод.
//
// Параметры: {"text", "source_lang", "target_lang"}.
func (t *TranslateTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var args struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid translate parameters: %w", err)
	}
	if args.Text == "" || args.TargetLang == "" {
		return "", fmt.Errorf("translation requires text and target_lang")
	}
	return fmt.Sprintf("Translation of '%s' from %s to %s: [translated text would appear here]",
		args.Text, args.SourceLang, args.TargetLang), nil
}

// titleCase капитализирует первую букву каждого слова.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Compile-time проверки реализации интерфейса.
var (
	_ tools.Tool = (*WeatherTool)(nil)
	_ tools.Tool = (*CapitalTool)(nil)
	_ tools.Tool = (*SearchTool)(nil)
	_ tools.Tool = (*TranslateTool)(nil)
)
