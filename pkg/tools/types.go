// Интерфейс Tool и структуры определений.

package tools

import "context"

// Definition описывает инструмент: имя — внешний контракт вызова,
// описание — источник эмбеддинга для retrieval.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Tool — контракт, который должен реализовать любой инструмент.
//
// "Raw In, String Out": инструмент получает сырой JSON с параметрами
// и возвращает текстовый результат или ошибку. Внутренняя логика
// (HTTP вызовы, парсинг файлов) — дело конкретной реализации и не
// является частью ядра.
type Tool interface {
	// Definition возвращает описание инструмента.
	Definition() Definition

	// Execute выполняет логику инструмента.
	// argsJSON — сырой JSON с параметрами вызова.
	// Возвращает текстовый результат или ошибку.
	Execute(ctx context.Context, argsJSON string) (string, error)
}

// InvocationRecord — запись об одном вызове инструмента.
//
// Добавляется в ReasoningState после каждого вызова; после создания
// не мутируется. Ссылается на инструмент по имени (loose coupling —
// boundary резолвит имя в поведение, а не в запись каталога).
type InvocationRecord struct {
	ToolName string         `json:"name"`
	Params   map[string]any `json:"parameters"`
	Result   string         `json:"result"`
	Failed   bool           `json:"failed,omitempty"`
}
