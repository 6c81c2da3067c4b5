package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/catalog"
	"github.com/ilkoid/cotools-ai/pkg/embedding"
	"github.com/ilkoid/cotools-ai/pkg/events"
	"github.com/ilkoid/cotools-ai/pkg/gate"
	"github.com/ilkoid/cotools-ai/pkg/llm"
	"github.com/ilkoid/cotools-ai/pkg/tools"
	"github.com/ilkoid/cotools-ai/pkg/utils"
)

// InteractionLogger — порт журнала взаимодействий.
//
// storage.Store реализует этот контракт; nil logger означает
// memory-only режим.
type InteractionLogger interface {
	AppendInteraction(ctx context.Context, query, response string, used []tools.InvocationRecord) (int64, error)
}

// Executor — цикл рассуждения Chain-of-Tools.
//
// На каждом шаге цикл строит снимок состояния, спрашивает gate
// "нужен ли инструмент", и либо генерирует следующий фрагмент текста,
// либо выполняет retrieval → вызов → вшивание результата. Инструменты
// подключаются на границах шагов; внутрь генерации вызовы не
// вставляются.
//
// Executor stateless между сессиями: всё состояние сессии живёт в
// ReasoningState, конкурентные Execute безопасны.
type Executor struct {
	judge        *gate.Judge
	generator    llm.Generator
	queryEncoder embedding.Encoder
	catalog      *catalog.Catalog
	registry     *tools.Registry
	config       LoopConfig

	logger InteractionLogger

	observers    []ExecutionObserver
	stepObserver *EmitterStepObserver
}

// NewExecutor создаёт executor с обязательными зависимостями.
//
// Rule 7: неполная конфигурация — ошибка создания, а не panic посреди
// сессии.
func NewExecutor(
	judge *gate.Judge,
	generator llm.Generator,
	queryEncoder embedding.Encoder,
	cat *catalog.Catalog,
	registry *tools.Registry,
	config LoopConfig,
) (*Executor, error) {
	if judge == nil {
		return nil, fmt.Errorf("executor requires a gate judge")
	}
	if generator == nil {
		return nil, fmt.Errorf("executor requires a generator")
	}
	if queryEncoder == nil {
		return nil, fmt.Errorf("executor requires a query encoder")
	}
	if cat == nil {
		return nil, fmt.Errorf("executor requires a tool catalog")
	}
	if registry == nil {
		return nil, fmt.Errorf("executor requires a tool registry")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Executor{
		judge:        judge,
		generator:    generator,
		queryEncoder: queryEncoder,
		catalog:      cat,
		registry:     registry,
		config:       config,
	}, nil
}

// SetLogger подключает журнал взаимодействий.
//
// Отказ журнала не прерывает сессию: ответ возвращается, LogID
// остаётся нулевым.
func (e *Executor) SetLogger(logger InteractionLogger) {
	e.logger = logger
}

// AddObserver добавляет наблюдателя за выполнением.
//
// Thread-safe: вызывается до Execute(), не требует синхронизации.
func (e *Executor) AddObserver(observer ExecutionObserver) {
	e.observers = append(e.observers, observer)
}

// SetEmitter подключает emitter событий.
//
// Регистрирует lifecycle наблюдателя и наблюдателя событий шага.
func (e *Executor) SetEmitter(emitter events.Emitter) {
	e.AddObserver(NewEmitterObserver(emitter))
	e.stepObserver = NewEmitterStepObserver(emitter)
}

// Execute выполняет одну сессию рассуждения.
//
// Шаг цикла:
//
//	├─ проверка отмены контекста
//	├─ снимок состояния → gate
//	├─ инструмент нужен:
//	│  ├─ retrieval промпт → query вектор → FindSimilar
//	│  ├─ построение параметров → Invoke
//	│  └─ вшивание результата (или failure notice) в transcript
//	├─ инструмент не нужен:
//	│  └─ генерация следующего фрагмента
//	└─ проверка завершения: маркер при step >= MinSteps, или MaxSteps
//
// Неудачный вызов инструмента и отказ генератора не ошибки сессии:
// уведомление вшивается в transcript и цикл продолжается. Сессию с
// ошибкой завершают отмена контекста и внутренний отказ retrieval
// (несовпадение размерностей, отказ энкодера).
func (e *Executor) Execute(ctx context.Context, query string) (Output, error) {
	startTime := time.Now()
	state := NewReasoningState(query)

	for _, obs := range e.observers {
		obs.OnStart(ctx, state)
	}

	utils.Info("Reasoning session started",
		"query_length", len(query),
		"max_steps", e.config.MaxSteps)

	completed := false
	for state.Step() < e.config.MaxSteps {
		if err := ctx.Err(); err != nil {
			return e.finishWithError(state, fmt.Errorf("reasoning cancelled: %w", err))
		}

		step := state.AdvanceStep()
		e.notifyStepStart(step)
		e.stepObserver.EmitThinking(ctx, step, fmt.Sprintf("Step %d: Generating candidate token...", step))

		snapshot := e.generator.StateSnapshot(ctx, state.Transcript())
		score := e.judge.Evaluate(snapshot)
		e.stepObserver.EmitGateScore(ctx, step, score.Value, score.ToolNeeded)

		if score.ToolNeeded {
			e.stepObserver.EmitThinking(ctx, step, "Decision: Tool required. Preparing tool retrieval...")
			if err := e.retrieveAndInvoke(ctx, state, step); err != nil {
				return e.finishWithError(state, err)
			}
		} else {
			e.stepObserver.EmitThinking(ctx, step, "Decision: No tool needed. Generating next token...")
			fragment, err := e.generator.NextIncrement(ctx, step, state.Transcript())
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return e.finishWithError(state, fmt.Errorf("generation cancelled: %w", ctxErr))
				}
				// Отказ генератора деградирует как отказ инструмента:
				// шаг потерян, сессия — нет.
				utils.Warn("Increment generation failed",
					"step", step,
					"error", err)
				state.FoldGenerationFailure(err.Error())
			} else {
				state.AppendIncrement(fragment)
				e.stepObserver.EmitTokens(ctx, fragment)
			}
		}

		e.notifyStepEnd(step)

		// Маркер завершения учитывается только после MinSteps: ранний
		// маркер (например, из результата инструмента) не обрывает
		// рассуждение.
		if state.Step() >= e.config.MinSteps && state.HasMarker(e.config.CompletionMarker) {
			completed = true
			break
		}
	}

	return e.finalize(ctx, state, startTime, completed)
}

// retrieveAndInvoke выполняет ветку шага "инструмент нужен".
//
// Возвращает ошибку только при отмене контекста или внутреннем отказе
// retrieval (несовпадение размерностей, отказ энкодера). Неудача
// самого инструмента деградирует в failure notice.
func (e *Executor) retrieveAndInvoke(ctx context.Context, state *ReasoningState, step int) error {
	transcript := state.Transcript()
	retrievalPrompt := fmt.Sprintf("Based on the context: '%s', what tool is needed?", transcript)

	queryVec, err := e.queryEncoder.Encode(ctx, retrievalPrompt)
	if err != nil {
		return fmt.Errorf("encode retrieval prompt at step %d: %w", step, err)
	}

	match, err := e.catalog.FindSimilar(queryVec)
	if err != nil {
		return fmt.Errorf("tool retrieval at step %d: %w", step, err)
	}
	if match == nil {
		// Пустой каталог: деградация, а не отказ.
		utils.Warn("Tool needed but catalog is empty", "step", step)
		state.FoldNoToolsAvailable()
		return nil
	}

	entry := match.Entry
	e.stepObserver.EmitToolSelected(ctx, entry.Name, entry.Description, match.Score)

	params := buildParams(entry.Name, state.Query(), transcript)
	argsJSON, _ := json.Marshal(params)
	e.stepObserver.EmitToolCall(ctx, entry.Name, string(argsJSON))

	invokeStart := time.Now()
	result, err := e.registry.Invoke(ctx, entry.Name, params)
	duration := time.Since(invokeStart)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("tool invocation cancelled: %w", ctxErr)
		}

		utils.Warn("Tool invocation failed",
			"tool", entry.Name,
			"step", step,
			"error", err)

		state.FoldToolFailure(entry.Name, err.Error())
		state.RecordInvocation(tools.InvocationRecord{
			ToolName: entry.Name,
			Params:   params,
			Result:   err.Error(),
			Failed:   true,
		})
		e.stepObserver.EmitToolResult(ctx, entry.Name, err.Error(), false, duration)
		return nil
	}

	state.FoldToolResult(result)
	state.RecordInvocation(tools.InvocationRecord{
		ToolName: entry.Name,
		Params:   params,
		Result:   result,
	})
	e.stepObserver.EmitToolResult(ctx, entry.Name, result, true, duration)

	utils.Debug("Tool invocation completed",
		"tool", entry.Name,
		"step", step,
		"duration_ms", duration.Milliseconds())

	return nil
}

// finalize формирует результат сессии и пишет журнал.
func (e *Executor) finalize(ctx context.Context, state *ReasoningState, startTime time.Time, completed bool) (Output, error) {
	answer := strings.TrimSpace(state.Answer())
	e.stepObserver.EmitMessage(ctx, answer)

	output := Output{
		Answer:    answer,
		Steps:     state.Step(),
		ToolsUsed: state.Invocations(),
		Completed: completed,
		Duration:  time.Since(startTime),
	}

	if e.logger != nil {
		logID, err := e.logger.AppendInteraction(ctx, state.Query(), answer, output.ToolsUsed)
		if err != nil {
			// Журнал — вспомогательный контур: его отказ не отменяет ответ.
			utils.Warn("Interaction log write failed", "error", err)
		} else {
			output.LogID = logID
		}
	}

	utils.Info("Reasoning session completed",
		"steps", output.Steps,
		"tools_used", len(output.ToolsUsed),
		"completed", completed,
		"duration_ms", output.Duration.Milliseconds())

	for _, obs := range e.observers {
		obs.OnFinish(output, nil)
	}
	return output, nil
}

// finishWithError завершает сессию с ошибкой и уведомляет наблюдателей.
func (e *Executor) finishWithError(state *ReasoningState, err error) (Output, error) {
	utils.Error("Reasoning session failed",
		"step", state.Step(),
		"error", err)

	for _, obs := range e.observers {
		obs.OnFinish(Output{}, err)
	}
	return Output{}, err
}

// Helper methods for observer notifications

func (e *Executor) notifyStepStart(step int) {
	for _, obs := range e.observers {
		obs.OnStepStart(step)
	}
}

func (e *Executor) notifyStepEnd(step int) {
	for _, obs := range e.observers {
		obs.OnStepEnd(step)
	}
}
