package chain

import (
	"context"
	"strings"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/events"
)

// Observer implementations изолируют cross-cutting concerns от
// оркестрации цикла: executor уведомляет наблюдателей о lifecycle
// событиях и делегирует отправку событий, вместо прямых вызовов Emit
// из ядра.

// ExecutionObserver — интерфейс наблюдения за выполнением сессии.
//
// Lifecycle contract:
//  1. OnStart вызывается один раз перед началом цикла
//  2. OnStepStart/OnStepEnd вызываются для каждого шага
//  3. OnFinish вызывается один раз в конце (успех или ошибка)
//
// Реализации должны быть thread-safe: сессии могут выполняться
// конкурентно, каждая со своим ReasoningState.
type ExecutionObserver interface {
	OnStart(ctx context.Context, state *ReasoningState)
	OnStepStart(step int)
	OnStepEnd(step int)
	OnFinish(result Output, err error)
}

// EmitterObserver — наблюдатель, отправляющий lifecycle события в Emitter.
//
// OnStart отправляет EventQuery, OnFinish — EventDone или EventError.
// События внутри шага отправляет EmitterStepObserver.
type EmitterObserver struct {
	emitter events.Emitter
}

// NewEmitterObserver создаёт наблюдатель поверх emitter.
func NewEmitterObserver(emitter events.Emitter) *EmitterObserver {
	return &EmitterObserver{emitter: emitter}
}

// OnStart отправляет EventQuery с запросом пользователя.
func (o *EmitterObserver) OnStart(ctx context.Context, state *ReasoningState) {
	if o.emitter == nil {
		return
	}
	o.emitter.Emit(ctx, events.Event{
		Type:      events.EventQuery,
		Data:      events.QueryData{Query: state.Query()},
		Timestamp: time.Now(),
	})
}

// OnStepStart вызывается в начале каждого шага.
func (o *EmitterObserver) OnStepStart(step int) {
	// События шага отправляет EmitterStepObserver
}

// OnStepEnd вызывается в конце каждого шага.
func (o *EmitterObserver) OnStepEnd(step int) {
	// События шага отправляет EmitterStepObserver
}

// OnFinish отправляет финальное событие: EventDone или EventError.
func (o *EmitterObserver) OnFinish(result Output, err error) {
	if o.emitter == nil {
		return
	}

	ctx := context.Background()

	if err != nil {
		o.emitter.Emit(ctx, events.Event{
			Type:      events.EventError,
			Data:      events.ErrorData{Err: err},
			Timestamp: time.Now(),
		})
		return
	}

	o.emitter.Emit(ctx, events.Event{
		Type:      events.EventDone,
		Data:      events.MessageData{Content: result.Answer},
		Timestamp: time.Now(),
	})
}

// Ensure EmitterObserver implements ExecutionObserver
var _ ExecutionObserver = (*EmitterObserver)(nil)

// EmitterStepObserver — наблюдатель событий внутри шага.
//
// Отдельный тип, а не часть EmitterObserver: эти события возникают
// ВНУТРИ шага (оценка gate, выбор инструмента, токены) и требуют
// данных шага — executor вызывает их напрямую, а не через lifecycle
// уведомления.
type EmitterStepObserver struct {
	emitter events.Emitter
}

// NewEmitterStepObserver создаёт наблюдатель поверх emitter.
func NewEmitterStepObserver(emitter events.Emitter) *EmitterStepObserver {
	return &EmitterStepObserver{emitter: emitter}
}

func (o *EmitterStepObserver) emit(ctx context.Context, t events.EventType, data events.EventData) {
	if o == nil || o.emitter == nil {
		return
	}
	o.emitter.Emit(ctx, events.Event{Type: t, Data: data, Timestamp: time.Now()})
}

// EmitThinking отправляет EventThinking для внутреннего шага.
func (o *EmitterStepObserver) EmitThinking(ctx context.Context, step int, message string) {
	o.emit(ctx, events.EventThinking, events.ThinkingData{Step: step, Message: message})
}

// EmitGateScore отправляет результат оценки gate.
func (o *EmitterStepObserver) EmitGateScore(ctx context.Context, step int, score float64, toolNeeded bool) {
	o.emit(ctx, events.EventGateScore, events.GateScoreData{Step: step, Score: score, ToolNeeded: toolNeeded})
}

// EmitToolSelected отправляет данные о выбранном инструменте.
func (o *EmitterStepObserver) EmitToolSelected(ctx context.Context, name, description string, score float64) {
	o.emit(ctx, events.EventToolSelected, events.ToolSelectedData{ToolName: name, Description: description, Score: score})
}

// EmitToolCall отправляет данные о вызове инструмента.
func (o *EmitterStepObserver) EmitToolCall(ctx context.Context, name, args string) {
	o.emit(ctx, events.EventToolCall, events.ToolCallData{ToolName: name, Args: args})
}

// EmitToolResult отправляет результат выполнения инструмента.
func (o *EmitterStepObserver) EmitToolResult(ctx context.Context, name, result string, success bool, duration time.Duration) {
	o.emit(ctx, events.EventToolResult, events.ToolResultData{ToolName: name, Result: result, Success: success, Duration: duration})
}

// EmitTokens отправляет фрагмент генератора по токенам.
//
// Токенизация по пробелам — как результат стримился бы от настоящей
// модели.
func (o *EmitterStepObserver) EmitTokens(ctx context.Context, fragment string) {
	if o == nil || o.emitter == nil {
		return
	}
	for _, token := range strings.Fields(fragment) {
		o.emit(ctx, events.EventToken, events.TokenData{Token: token + " "})
	}
}

// EmitMessage отправляет EventMessage с текстом ответа.
func (o *EmitterStepObserver) EmitMessage(ctx context.Context, content string) {
	o.emit(ctx, events.EventMessage, events.MessageData{Content: content})
}
