// Эвристики построения параметров вызова инструмента.
//
// Шаг retrieval выбирает инструмент по эмбеддингу, но параметры вызова
// приходится собирать из текста: лексические эвристики вытаскивают из
// запроса и transcript локацию, страну, выражение или URL. Это
// сознательно простая модель — связывание аргументов полноценной
// моделью вне скоупа.

package chain

import (
	"regexp"
	"strings"
)

// knownCities и knownCountries — опорные списки для извлечения
// сущностей. Совпадение ищется без учёта регистра.
var knownCities = []string{
	"Paris", "Berlin", "Rome", "Madrid", "London",
	"Tokyo", "Beijing", "Ottawa", "Canberra", "Washington",
}

var knownCountries = []string{
	"France", "Germany", "Italy", "Spain", "United Kingdom",
	"USA", "Canada", "Japan", "China", "Australia",
}

var (
	urlPattern  = regexp.MustCompile(`https?://[^\s'"]+`)
	exprPattern = regexp.MustCompile(`[-(]?\d+(?:\.\d+)?(?:\s*[-+*/]\s*[-(]?\d+(?:\.\d+)?[)]?)+`)
	filePattern = regexp.MustCompile(`[\w./-]+\.(?:mpp|mpx|xml|xer|p6xml)\b`)
)

// buildParams собирает параметры вызова для выбранного инструмента.
//
// query — исходный вопрос пользователя, transcript — текущий контекст.
// Неизвестный инструмент получает {"query": query} — разумный общий
// знаменатель для поисковых capability.
func buildParams(toolName, query, transcript string) map[string]any {
	combined := query + "\n" + transcript
	lower := strings.ToLower(combined)

	switch toolName {
	case "WeatherAPI":
		params := map[string]any{"location": findEntity(combined, knownCities, "Paris")}
		if strings.Contains(lower, "yesterday") {
			params["date"] = "yesterday"
		} else if strings.Contains(lower, "today") {
			params["date"] = "today"
		}
		return params

	case "CapitalFinder":
		return map[string]any{"country": findEntity(combined, knownCountries, "France")}

	case "Calculator":
		if expr := exprPattern.FindString(combined); expr != "" {
			return map[string]any{"expression": strings.TrimSpace(expr)}
		}
		return map[string]any{"expression": query}

	case "TranslateAPI":
		target := "french"
		for _, lang := range []string{"french", "spanish", "german"} {
			if strings.Contains(lower, lang) {
				target = lang
				break
			}
		}
		return map[string]any{
			"text":        query,
			"source_lang": "english",
			"target_lang": target,
		}

	case "WebContentFetcher":
		if url := urlPattern.FindString(combined); url != "" {
			return map[string]any{"url": url}
		}
		return map[string]any{"url": "https://example.com/" + slugify(query)}

	case "NewsSearch":
		return map[string]any{"query": query}

	case "ProjectFileProcessor":
		params := map[string]any{}
		if path := filePattern.FindString(combined); path != "" {
			params["file_path"] = path
		} else {
			params["file_path"] = "project.mpp"
		}
		switch {
		case strings.Contains(lower, "resource"):
			params["operation"] = "resources"
		case strings.Contains(lower, "task"):
			params["operation"] = "tasks"
		default:
			params["operation"] = "analyze"
		}
		return params

	default:
		// SearchAPI, WebSearch и любой незнакомый инструмент
		return map[string]any{"query": query}
	}
}

// findEntity возвращает первое совпадение из списка или fallback.
func findEntity(text string, candidates []string, fallback string) string {
	lower := strings.ToLower(text)
	for _, c := range candidates {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return fallback
}

// slugify превращает текст в URL-дружественный фрагмент.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, "-")
}
