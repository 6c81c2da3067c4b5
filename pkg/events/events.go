// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события reasoning цикла.
// Позволяет подключать любые UI (TUI, Web, CLI) без изменения библиотечной
// логики: цикл эмитит события, наблюдатели их отображают. Наблюдатели не
// влияют на control flow цикла.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI (TUI, CLI, etc).
//
// # Basic Usage
//
//	// В библиотеке (pkg/chain):
//	cycle.SetEmitter(events.NewChanEmitter(64))
//
//	// В UI:
//	sub := emitter.Subscribe()
//	for event := range sub.Events() {
//	    switch event.Type {
//	    case events.EventGateScore:
//	        ui.showScore(event.Data)
//	    case events.EventToolResult:
//	        ui.showResult(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
//
// # Rule 11: Context Propagation
//
// Emitter.Emit() принимает context.Context для отмены операции.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события reasoning цикла.
type EventType string

const (
	// EventQuery отправляется когда цикл принял запрос пользователя.
	EventQuery EventType = "query"

	// EventThinking отправляется для каждого внутреннего шага рассуждения.
	EventThinking EventType = "thinking"

	// EventGateScore отправляется после оценки Tool-Need Gate на шаге.
	EventGateScore EventType = "gate_score"

	// EventToolSelected отправляется когда retrieval выбрал инструмент.
	EventToolSelected EventType = "tool_selected"

	// EventToolCall отправляется перед вызовом инструмента.
	EventToolCall EventType = "tool_call"

	// EventToolResult отправляется когда инструмент вернул результат.
	EventToolResult EventType = "tool_result"

	// EventToken отправляется для каждого сгенерированного токена.
	EventToken EventType = "token"

	// EventMessage отправляется когда цикл сформировал текст ответа.
	EventMessage EventType = "message"

	// EventError отправляется при ошибке.
	EventError EventType = "error"

	// EventDone отправляется когда цикл завершил работу.
	EventDone EventType = "done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// QueryData содержит данные для EventQuery.
type QueryData struct {
	Query string
}

func (QueryData) eventData() {}

// ThinkingData содержит данные для EventThinking.
type ThinkingData struct {
	// Step — номер шага reasoning цикла (1-based), 0 для событий вне цикла
	Step int

	// Message — текст внутреннего рассуждения
	Message string
}

func (ThinkingData) eventData() {}

// GateScoreData содержит результат оценки Tool-Need Gate.
type GateScoreData struct {
	Step       int
	Score      float64
	ToolNeeded bool
}

func (GateScoreData) eventData() {}

// ToolSelectedData содержит данные о выбранном через retrieval инструменте.
type ToolSelectedData struct {
	ToolName    string
	Description string

	// Score — скалярное произведение query и tool векторов
	Score float64
}

func (ToolSelectedData) eventData() {}

// ToolCallData содержит данные о вызове инструмента.
type ToolCallData struct {
	ToolName string
	Args     string
}

func (ToolCallData) eventData() {}

// ToolResultData содержит результат выполнения инструмента.
type ToolResultData struct {
	ToolName string
	Result   string
	Success  bool
	Duration time.Duration
}

func (ToolResultData) eventData() {}

// TokenData содержит один сгенерированный токен.
type TokenData struct {
	Token string
}

func (TokenData) eventData() {}

// MessageData содержит данные для EventMessage и EventDone.
type MessageData struct {
	Content string
}

func (MessageData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// Event представляет событие от reasoning цикла.
//
// Data содержит типизированные данные события (EventData).
// Для каждого EventType существует соответствующий тип данных:
//   - EventQuery: QueryData
//   - EventThinking: ThinkingData
//   - EventGateScore: GateScoreData
//   - EventToolSelected: ToolSelectedData
//   - EventToolCall: ToolCallData
//   - EventToolResult: ToolResultData
//   - EventToken: TokenData
//   - EventMessage: MessageData
//   - EventError: ErrorData
//   - EventDone: MessageData (финальный ответ)
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// Emitter — это Port для отправки событий.
//
// Emitter инвертирует зависимость: библиотека (pkg/chain) зависит
// от этого интерфейса, а не от конкретного UI.
//
// Rule 11: все операции должны уважать context.Context.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться.
	// Цикл не ждёт обработки события наблюдателем (fire-and-continue),
	// но для одного шага события отправляются ровно один раз и в порядке
	// возникновения.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
//
// Rule 5: thread-safe операции.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при вызове Close().
	Events() <-chan Event

	// Close закрывает канал событий и освобождает ресурсы.
	Close()
}
