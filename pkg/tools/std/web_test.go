package std

import (
	"context"
	"strings"
	"testing"
)

// TestWebSearchTool тестирует формат результатов веб-поиска.
func TestWebSearchTool(t *testing.T) {
	tool := NewWebSearchTool(nil)
	ctx := context.Background()

	got, err := tool.Execute(ctx, `{"query":"go generics"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.HasPrefix(got, "Search results for 'go generics':") {
		t.Errorf("Result header missing: %q", got)
	}
	if !strings.Contains(got, "https://example.com/search?q=go+generics&id=1") {
		t.Errorf("Result missing encoded URL: %q", got)
	}
	if !strings.Contains(got, "first result") {
		t.Errorf("Result missing ordinal wording: %q", got)
	}
}

// TestWebSearchTool_NumResults тестирует ограничение числа результатов.
func TestWebSearchTool_NumResults(t *testing.T) {
	tool := NewWebSearchTool(nil)
	ctx := context.Background()

	got, err := tool.Execute(ctx, `{"query":"x","num_results":1}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.Contains(got, "2. Result") {
		t.Errorf("num_results=1 should cap the list: %q", got)
	}

	if _, err := tool.Execute(ctx, `{}`); err == nil {
		t.Error("Missing query expected error, got nil")
	}
}

// TestNewsSearchTool_DateFilter тестирует описание фильтра дат в заголовке.
func TestNewsSearchTool_DateFilter(t *testing.T) {
	tool := NewNewsSearchTool(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		args string
		want string
	}{
		{"both dates", `{"query":"ai","start_date":"2025-03-01","end_date":"2025-03-31"}`,
			"News search results for 'ai' from 2025-03-01 to 2025-03-31:"},
		{"start only", `{"query":"ai","start_date":"2025-03-01"}`,
			"News search results for 'ai' from 2025-03-01:"},
		{"end only", `{"query":"ai","end_date":"2025-03-31"}`,
			"News search results for 'ai' until 2025-03-31:"},
		{"no dates", `{"query":"ai"}`,
			"News search results for 'ai':"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(ctx, tt.args)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Header = %q..., want prefix %q", firstLineOf(got), tt.want)
			}
		})
	}
}

// TestNewsSearchTool_Articles тестирует состав статей.
func TestNewsSearchTool_Articles(t *testing.T) {
	tool := NewNewsSearchTool(nil)
	ctx := context.Background()

	got, err := tool.Execute(ctx, `{"query":"ai"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(got, "https://news-example.com/article?q=ai&id=1") {
		t.Errorf("Missing article URL: %q", got)
	}
	if !strings.Contains(got, "(2025-03-30)") {
		t.Errorf("Missing article date: %q", got)
	}
	if !strings.Contains(got, "This is a news article about ai published recently.") {
		t.Errorf("Missing article snippet: %q", got)
	}
}

// TestWebContentFetcherTool тестирует ветки выгрузки контента.
func TestWebContentFetcherTool(t *testing.T) {
	tool := NewWebContentFetcherTool(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"news domain", "https://news-example.com/article?q=ai&id=1", "News article from"},
		{"example domain", "https://example.com/page", "Content from"},
		{"unknown domain", "https://unknown.org/page", "Unable to fetch content from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(ctx, `{"url":"`+tt.url+`"}`)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("Execute(%s) = %q..., want prefix %q", tt.url, firstLineOf(got), tt.want)
			}
		})
	}
}

// TestWebContentFetcherTool_InvalidURL тестирует что кривой URL — ошибка.
func TestWebContentFetcherTool_InvalidURL(t *testing.T) {
	tool := NewWebContentFetcherTool(nil)
	ctx := context.Background()

	if _, err := tool.Execute(ctx, `{"url":"not a url"}`); err == nil {
		t.Error("Invalid URL expected error, got nil")
	}
	if _, err := tool.Execute(ctx, `{}`); err == nil {
		t.Error("Missing URL expected error, got nil")
	}
}

// TestWebLimiter_Cancellation тестирует отмену ожидания слота.
func TestWebLimiter_Cancellation(t *testing.T) {
	// rps=0.001 — второй запрос ждал бы минуты
	limiter := NewWebLimiter(0.001, 1)
	tool := NewWebSearchTool(limiter)

	// Первый запрос съедает burst
	if _, err := tool.Execute(context.Background(), `{"query":"a"}`); err != nil {
		t.Fatalf("First Execute: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tool.Execute(ctx, `{"query":"b"}`); err == nil {
		t.Error("Cancelled context expected rate limit error, got nil")
	}
}

func firstLineOf(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
