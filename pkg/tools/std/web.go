// Веб-инструменты: поиск, новости, выгрузка контента.
//
// Результаты симулированы, но внешний контур настоящий: общий rate
// limiter сдерживает частоту обращений, как сдерживал бы реальный API.

package std

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// WebLimiter — общий ограничитель частоты для веб-инструментов.
//
// Один limiter на все три инструмента: внешний API один, квота общая.
type WebLimiter struct {
	limiter *rate.Limiter
}

// NewWebLimiter создаёт ограничитель: rps запросов в секунду, burst пик.
func NewWebLimiter(rps float64, burst int) *WebLimiter {
	return &WebLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// wait блокирует до получения слота или отмены контекста.
func (l *WebLimiter) wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("web rate limit: %w", err)
	}
	return nil
}

// WebSearchTool — расширенный веб-поиск.
type WebSearchTool struct {
	limiter *WebLimiter
}

// NewWebSearchTool создаёт инструмент с общим ограничителем частоты.
func NewWebSearchTool(limiter *WebLimiter) *WebSearchTool {
	return &WebSearchTool{limiter: limiter}
}

// Definition возвращает описание инструмента.
func (t *WebSearchTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "WebSearch",
		Description: "Search the web for current information on any topic.",
	}
}

// Execute возвращает форматированный список результатов.
//
// Параметры: {"query": string, "num_results": int (опционально, default 5)}.
func (t *WebSearchTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Query      string `json:"query"`
		NumResults int    `json:"num_results"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid web search parameters: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("web search requires a query")
	}
	if args.NumResults <= 0 {
		args.NumResults = 5
	}

	if err := t.limiter.wait(ctx); err != nil {
		return "", err
	}

	encoded := url.QueryEscape(args.Query)
	snippets := []string{
		"It contains relevant information about the topic.",
		"It contains additional information about the topic.",
		"It provides a different perspective on the topic.",
	}

	count := len(snippets)
	if args.NumResults < count {
		count = args.NumResults
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for '%s':\n", args.Query)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "\n%d. Result %d for %s\n   URL: https://example.com/search?q=%s&id=%d\n   This is the %s result for %s. %s\n",
			i+1, i+1, args.Query, encoded, i+1, ordinal(i+1), args.Query, snippets[i])
	}
	return b.String(), nil
}

// NewsSearchTool — поиск новостей с фильтром по датам.
type NewsSearchTool struct {
	limiter *WebLimiter
}

// NewNewsSearchTool создаёт инструмент с общим ограничителем частоты.
func NewNewsSearchTool(limiter *WebLimiter) *NewsSearchTool {
	return &NewsSearchTool{limiter: limiter}
}

// Definition возвращает описание инструмента.
func (t *NewsSearchTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "NewsSearch",
		Description: "Search for recent news articles on a topic.",
	}
}

// Execute возвращает форматированный список новостей.
//
// Параметры: {"query", "start_date", "end_date" (YYYY-MM-DD), "num_results"}.
func (t *NewsSearchTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Query      string `json:"query"`
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		NumResults int    `json:"num_results"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid news search parameters: %w", err)
	}
	if args.Query == "" {
		return "", fmt.Errorf("news search requires a query")
	}
	if args.NumResults <= 0 {
		args.NumResults = 5
	}

	if err := t.limiter.wait(ctx); err != nil {
		return "", err
	}

	dateFilter := ""
	switch {
	case args.StartDate != "" && args.EndDate != "":
		dateFilter = fmt.Sprintf(" from %s to %s", args.StartDate, args.EndDate)
	case args.StartDate != "":
		dateFilter = fmt.Sprintf(" from %s", args.StartDate)
	case args.EndDate != "":
		dateFilter = fmt.Sprintf(" until %s", args.EndDate)
	}

	encoded := url.QueryEscape(args.Query)
	articles := []struct {
		snippet string
		date    string
	}{
		{fmt.Sprintf("This is a news article about %s published recently.", args.Query), "2025-03-30"},
		{fmt.Sprintf("This is another news article about %s published last week.", args.Query), "2025-03-25"},
		{fmt.Sprintf("This is an older news article about %s.", args.Query), "2025-03-15"},
	}

	count := len(articles)
	if args.NumResults < count {
		count = args.NumResults
	}

	var b strings.Builder
	fmt.Fprintf(&b, "News search results for '%s'%s:\n", args.Query, dateFilter)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "\n%d. News %d about %s (%s)\n   URL: https://news-example.com/article?q=%s&id=%d\n   %s\n",
			i+1, i+1, args.Query, articles[i].date, encoded, i+1, articles[i].snippet)
	}
	return b.String(), nil
}

// WebContentFetcherTool выгружает текстовый контент страницы.
type WebContentFetcherTool struct {
	limiter *WebLimiter
}

// NewWebContentFetcherTool создаёт инструмент с общим ограничителем частоты.
func NewWebContentFetcherTool(limiter *WebLimiter) *WebContentFetcherTool {
	return &WebContentFetcherTool{limiter: limiter}
}

// Definition возвращает описание инструмента.
func (t *WebContentFetcherTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "WebContentFetcher",
		Description: "Fetch and extract text content from a web page URL.",
	}
}

// Execute возвращает контент страницы.
//
// Параметры: {"url": string}. Невалидный URL — ошибка; недоступный
// контент — нормальный результат (вшивается в transcript).
func (t *WebContentFetcherTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid fetch parameters: %w", err)
	}
	if args.URL == "" {
		return "", fmt.Errorf("content fetch requires a url")
	}
	if _, err := url.ParseRequestURI(args.URL); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", args.URL, err)
	}

	if err := t.limiter.wait(ctx); err != nil {
		return "", err
	}

	switch {
	case strings.Contains(args.URL, "news-example.com"):
		return fmt.Sprintf("News article from %s:\n\nThis is a simulated news article from %s. It contains the latest information about the topic, including recent developments, expert opinions, and relevant facts.", args.URL, args.URL), nil
	case strings.Contains(args.URL, "example.com"):
		return fmt.Sprintf("Content from %s:\n\nThis is a simulated webpage content for %s. It contains information that would typically be found on a webpage at this URL. The page discusses various aspects of the topic and provides useful information to the user.", args.URL, args.URL), nil
	default:
		return fmt.Sprintf("Unable to fetch content from %s. The URL may be invalid or the content may not be accessible.", args.URL), nil
	}
}

// ordinal возвращает порядковое слово для небольших чисел.
func ordinal(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

// Compile-time проверки реализации интерфейса.
var (
	_ tools.Tool = (*WebSearchTool)(nil)
	_ tools.Tool = (*NewsSearchTool)(nil)
	_ tools.Tool = (*WebContentFetcherTool)(nil)
)
