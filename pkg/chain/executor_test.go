package chain

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ilkoid/cotools-ai/pkg/catalog"
	"github.com/ilkoid/cotools-ai/pkg/embedding"
	"github.com/ilkoid/cotools-ai/pkg/gate"
	"github.com/ilkoid/cotools-ai/pkg/llm"
	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// constEncoder отдаёт один и тот же вектор для любого текста.
//
// Все записи каталога и все запросы проецируются в одну точку —
// retrieval детерминированно выбирает запись с наименьшим id.
type constEncoder struct {
	vec embedding.Vector
}

func (e constEncoder) Encode(context.Context, string) (embedding.Vector, error) {
	return e.vec.Clone(), nil
}

func (e constEncoder) BatchEncode(_ context.Context, texts []string) ([]embedding.Vector, error) {
	out := make([]embedding.Vector, len(texts))
	for i := range texts {
		out[i] = e.vec.Clone()
	}
	return out, nil
}

// stubTool возвращает фиксированный результат или ошибку.
type stubTool struct {
	name   string
	result string
	err    error
}

func (t *stubTool) Definition() tools.Definition {
	return tools.Definition{Name: t.name, Description: "stub"}
}

func (t *stubTool) Execute(context.Context, string) (string, error) {
	return t.result, t.err
}

// failingGenerator отказывает на каждом шаге генерации.
type failingGenerator struct {
	err error
}

func (g failingGenerator) NextIncrement(context.Context, int, string) (string, error) {
	return "", g.err
}

func (g failingGenerator) StateSnapshot(_ context.Context, transcript string) gate.Snapshot {
	return gate.TextSnapshot{Text: transcript}
}

// cancellingGenerator отменяет контекст посреди генерации.
type cancellingGenerator struct {
	cancel context.CancelFunc
}

func (g cancellingGenerator) NextIncrement(context.Context, int, string) (string, error) {
	g.cancel()
	return "", fmt.Errorf("stream interrupted")
}

func (g cancellingGenerator) StateSnapshot(_ context.Context, transcript string) gate.Snapshot {
	return gate.TextSnapshot{Text: transcript}
}

// opaqueGenerator отдаёт непрозрачный снимок состояния.
type opaqueGenerator struct {
	llm.Generator
}

func (g opaqueGenerator) StateSnapshot(context.Context, string) gate.Snapshot {
	return gate.OpaqueSnapshot{Handle: struct{}{}}
}

// fixedRand всегда возвращает одно и то же значение.
type fixedRand struct {
	v float64
}

func (r fixedRand) Float64() float64 { return r.v }

// capturingLogger запоминает последнюю запись журнала.
type capturingLogger struct {
	query    string
	response string
	used     []tools.InvocationRecord
	nextID   int64
	err      error
}

func (l *capturingLogger) AppendInteraction(_ context.Context, query, response string, used []tools.InvocationRecord) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.query = query
	l.response = response
	l.used = used
	l.nextID++
	return l.nextID, nil
}

// newTestExecutor собирает executor с управляемыми зависимостями.
func newTestExecutor(t *testing.T, threshold float64, gen llm.Generator, cfg LoopConfig, toolSet ...*stubTool) (*Executor, *catalog.Catalog) {
	t.Helper()

	enc := constEncoder{vec: embedding.Vector{1, 0}}
	cat, err := catalog.New(enc)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	registry := tools.NewRegistry()
	for _, tool := range toolSet {
		if _, err := cat.Register(context.Background(), tool.name, "stub tool"); err != nil {
			t.Fatalf("catalog.Register(%s): %v", tool.name, err)
		}
		if err := registry.Register(tool); err != nil {
			t.Fatalf("registry.Register(%s): %v", tool.name, err)
		}
	}

	judge, err := gate.NewJudge(threshold, gate.WithPerturbation(0))
	if err != nil {
		t.Fatalf("gate.NewJudge: %v", err)
	}

	exec, err := NewExecutor(judge, gen, enc, cat, registry, cfg)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return exec, cat
}

// TestExecutor_ScriptedDemo тестирует сценарную сессию без инструментов:
// маркер на восьмом шаге завершает цикл.
func TestExecutor_ScriptedDemo(t *testing.T) {
	// Порог 1: gate никогда не выбирает инструмент, все шаги — генерация
	exec, _ := newTestExecutor(t, 1, llm.NewScriptedGenerator(nil), DefaultLoopConfig())

	output, err := exec.Execute(context.Background(), "What was the weather in Paris yesterday, and what is the capital of France?")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !output.Completed {
		t.Error("Session should complete via the completion marker")
	}
	if output.Steps != 8 {
		t.Errorf("Steps = %d, want 8", output.Steps)
	}
	if !strings.Contains(output.Answer, "Therefore, the answer is: The weather in Paris yesterday was cloudy and 65°F") {
		t.Errorf("Answer missing final sentence: %q", output.Answer)
	}
	// Начальный промпт — контекст модели, не часть ответа
	if strings.Contains(output.Answer, "Let's think step by step") {
		t.Errorf("Answer must not contain the initial prompt: %q", output.Answer)
	}
	if len(output.ToolsUsed) != 0 {
		t.Errorf("ToolsUsed = %d, want 0", len(output.ToolsUsed))
	}
}

// TestExecutor_MinStepsGating тестирует что ранний маркер не обрывает
// рассуждение до MinSteps.
func TestExecutor_MinStepsGating(t *testing.T) {
	gen := llm.NewScriptedGenerator(map[int]string{
		1: "Therefore, the answer is: too early.",
	})
	cfg := LoopConfig{MaxSteps: 6, MinSteps: 4, CompletionMarker: DefaultCompletionMarker}
	exec, _ := newTestExecutor(t, 1, gen, cfg)

	output, err := exec.Execute(context.Background(), "q")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if output.Steps != 4 {
		t.Errorf("Steps = %d, want 4 (marker honored only from MinSteps)", output.Steps)
	}
	if !output.Completed {
		t.Error("Session should complete once MinSteps is reached")
	}
}

// TestExecutor_MaxStepsBound тестирует жёсткую границу числа шагов.
func TestExecutor_MaxStepsBound(t *testing.T) {
	// Пустой сценарий: фрагменты вырожденные, маркер не появляется
	gen := llm.NewScriptedGenerator(map[int]string{})
	cfg := LoopConfig{MaxSteps: 5, MinSteps: 1, CompletionMarker: DefaultCompletionMarker}
	exec, _ := newTestExecutor(t, 1, gen, cfg)

	output, err := exec.Execute(context.Background(), "q")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if output.Steps != 5 {
		t.Errorf("Steps = %d, want 5", output.Steps)
	}
	if output.Completed {
		t.Error("Session hitting MaxSteps must report Completed=false")
	}
}

// TestExecutor_ToolBranch тестирует ветку retrieval → вызов → вшивание.
func TestExecutor_ToolBranch(t *testing.T) {
	tool := &stubTool{name: "WeatherAPI", result: "Weather in Paris yesterday: Cloudy, 65°F"}
	cfg := LoopConfig{MaxSteps: 3, MinSteps: 1, CompletionMarker: DefaultCompletionMarker}
	// Порог 0: "weather" в transcript всегда выше порога
	exec, _ := newTestExecutor(t, 0, llm.NewScriptedGenerator(nil), cfg, tool)

	output, err := exec.Execute(context.Background(), "What is the weather in Paris yesterday?")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(output.ToolsUsed) != 3 {
		t.Fatalf("ToolsUsed = %d, want 3 (tool branch on every step)", len(output.ToolsUsed))
	}
	for i, rec := range output.ToolsUsed {
		if rec.ToolName != "WeatherAPI" {
			t.Errorf("ToolsUsed[%d].ToolName = %q, want WeatherAPI", i, rec.ToolName)
		}
		if rec.Failed {
			t.Errorf("ToolsUsed[%d] marked failed", i)
		}
	}
	if !strings.Contains(output.Answer, "Using a tool, I found: Weather in Paris yesterday: Cloudy, 65°F") {
		t.Errorf("Answer missing folded tool result: %q", output.Answer)
	}
}

// TestExecutor_ToolFailureContinues тестирует что неудачный вызов
// вшивается как failure notice и не роняет сессию.
func TestExecutor_ToolFailureContinues(t *testing.T) {
	tool := &stubTool{name: "WeatherAPI", err: fmt.Errorf("upstream is down")}
	cfg := LoopConfig{MaxSteps: 2, MinSteps: 1, CompletionMarker: DefaultCompletionMarker}
	exec, _ := newTestExecutor(t, 0, llm.NewScriptedGenerator(nil), cfg, tool)

	output, err := exec.Execute(context.Background(), "weather in Paris?")
	if err != nil {
		t.Fatalf("Tool failure must not fail the session: %v", err)
	}

	if output.Steps != 2 {
		t.Errorf("Steps = %d, want 2 (loop continues after failure)", output.Steps)
	}
	if !strings.Contains(output.Answer, "I tried to use WeatherAPI, but it failed") {
		t.Errorf("Answer missing failure notice: %q", output.Answer)
	}
	for i, rec := range output.ToolsUsed {
		if !rec.Failed {
			t.Errorf("ToolsUsed[%d].Failed = false, want true", i)
		}
	}
}

// TestExecutor_GeneratorFailureContinues тестирует что отказ генератора
// вшивается как failure notice и не роняет сессию.
func TestExecutor_GeneratorFailureContinues(t *testing.T) {
	gen := failingGenerator{err: fmt.Errorf("model backend unavailable")}
	cfg := LoopConfig{MaxSteps: 3, MinSteps: 1, CompletionMarker: DefaultCompletionMarker}
	// Порог 1: каждый шаг уходит в ветку генерации
	exec, _ := newTestExecutor(t, 1, gen, cfg)

	output, err := exec.Execute(context.Background(), "q")
	if err != nil {
		t.Fatalf("Generation failure must not fail the session: %v", err)
	}

	if output.Steps != 3 {
		t.Errorf("Steps = %d, want 3 (loop continues after failed steps)", output.Steps)
	}
	if output.Completed {
		t.Error("Session without marker must report Completed=false")
	}
	if !strings.Contains(output.Answer, "generation failed: model backend unavailable") {
		t.Errorf("Answer missing generation failure notice: %q", output.Answer)
	}
}

// TestExecutor_GenerationCancelledContext тестирует что отмена контекста
// во время генерации остаётся ошибкой сессии.
func TestExecutor_GenerationCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := cancellingGenerator{cancel: cancel}
	exec, _ := newTestExecutor(t, 1, gen, DefaultLoopConfig())

	if _, err := exec.Execute(ctx, "q"); err == nil {
		t.Fatal("Cancelled generation expected session error, got nil")
	}
}

// TestExecutor_GeneratorSnapshotDrivesGate тестирует что gate оценивает
// снимок генератора: непрозрачный снимок уводит оценку в rng fallback.
func TestExecutor_GeneratorSnapshotDrivesGate(t *testing.T) {
	enc := constEncoder{vec: embedding.Vector{1, 0}}
	cat, err := catalog.New(enc)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	judge, err := gate.NewJudge(0.5, gate.WithPerturbation(0), gate.WithRand(fixedRand{v: 0.9}))
	if err != nil {
		t.Fatalf("gate.NewJudge: %v", err)
	}

	gen := opaqueGenerator{Generator: llm.NewScriptedGenerator(nil)}
	cfg := LoopConfig{MaxSteps: 2, MinSteps: 1, CompletionMarker: DefaultCompletionMarker}
	exec, err := NewExecutor(judge, gen, enc, cat, tools.NewRegistry(), cfg)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	// В запросе нет trigger-фраз: текстовый снимок дал бы оценку 0 и
	// ветку генерации. Fallback 0.9 > 0.5 уводит оба шага в tool ветку,
	// а пустой каталог вшивает уведомление.
	output, err := exec.Execute(context.Background(), "plain question")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(output.Answer, "I looked for a suitable tool, but none are available.") {
		t.Errorf("Opaque snapshot should drive the gate into the tool branch, answer: %q", output.Answer)
	}
}

// TestExecutor_EmptyCatalog тестирует деградацию при пустом каталоге.
func TestExecutor_EmptyCatalog(t *testing.T) {
	cfg := LoopConfig{MaxSteps: 2, MinSteps: 1, CompletionMarker: DefaultCompletionMarker}
	exec, _ := newTestExecutor(t, 0, llm.NewScriptedGenerator(nil), cfg)

	output, err := exec.Execute(context.Background(), "weather in Paris?")
	if err != nil {
		t.Fatalf("Empty catalog must not fail the session: %v", err)
	}
	if !strings.Contains(output.Answer, "I looked for a suitable tool, but none are available.") {
		t.Errorf("Answer missing empty-catalog notice: %q", output.Answer)
	}
	if len(output.ToolsUsed) != 0 {
		t.Errorf("ToolsUsed = %d, want 0", len(output.ToolsUsed))
	}
}

// TestExecutor_CancelledContext тестирует что отмена контекста — ошибка
// сессии.
func TestExecutor_CancelledContext(t *testing.T) {
	exec, _ := newTestExecutor(t, 1, llm.NewScriptedGenerator(nil), DefaultLoopConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := exec.Execute(ctx, "q"); err == nil {
		t.Fatal("Execute with cancelled context expected error, got nil")
	}
}

// TestExecutor_InteractionLog тестирует запись в журнал взаимодействий.
func TestExecutor_InteractionLog(t *testing.T) {
	logger := &capturingLogger{}
	exec, _ := newTestExecutor(t, 1, llm.NewScriptedGenerator(nil), DefaultLoopConfig())
	exec.SetLogger(logger)

	output, err := exec.Execute(context.Background(), "demo query")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if output.LogID != 1 {
		t.Errorf("LogID = %d, want 1", output.LogID)
	}
	if logger.query != "demo query" {
		t.Errorf("Logged query = %q", logger.query)
	}
	if logger.response != output.Answer {
		t.Error("Logged response differs from returned answer")
	}
}

// TestExecutor_LoggerFailureIsNotFatal тестирует что отказ журнала не
// отменяет ответ.
func TestExecutor_LoggerFailureIsNotFatal(t *testing.T) {
	logger := &capturingLogger{err: fmt.Errorf("disk full")}
	exec, _ := newTestExecutor(t, 1, llm.NewScriptedGenerator(nil), DefaultLoopConfig())
	exec.SetLogger(logger)

	output, err := exec.Execute(context.Background(), "q")
	if err != nil {
		t.Fatalf("Logger failure must not fail the session: %v", err)
	}
	if output.LogID != 0 {
		t.Errorf("LogID = %d, want 0 when the log write fails", output.LogID)
	}
	if output.Answer == "" {
		t.Error("Answer should still be produced")
	}
}

// TestNewExecutor_Validation тестирует обязательность зависимостей.
func TestNewExecutor_Validation(t *testing.T) {
	enc := constEncoder{vec: embedding.Vector{1}}
	cat, _ := catalog.New(enc)
	registry := tools.NewRegistry()
	judge, _ := gate.NewJudge(0.5)
	gen := llm.NewScriptedGenerator(nil)
	cfg := DefaultLoopConfig()

	tests := []struct {
		name string
		fn   func() (*Executor, error)
	}{
		{"nil judge", func() (*Executor, error) { return NewExecutor(nil, gen, enc, cat, registry, cfg) }},
		{"nil generator", func() (*Executor, error) { return NewExecutor(judge, nil, enc, cat, registry, cfg) }},
		{"nil encoder", func() (*Executor, error) { return NewExecutor(judge, gen, nil, cat, registry, cfg) }},
		{"nil catalog", func() (*Executor, error) { return NewExecutor(judge, gen, enc, nil, registry, cfg) }},
		{"nil registry", func() (*Executor, error) { return NewExecutor(judge, gen, enc, cat, nil, cfg) }},
		{"bad config", func() (*Executor, error) {
			return NewExecutor(judge, gen, enc, cat, registry, LoopConfig{MaxSteps: -1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestLoopConfig_Validate тестирует валидацию настроек цикла.
func TestLoopConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoopConfig
		wantErr bool
	}{
		{"defaults are valid", DefaultLoopConfig(), false},
		{"zero max steps", LoopConfig{MinSteps: 1, CompletionMarker: "x"}, true},
		{"negative min steps", LoopConfig{MaxSteps: 5, MinSteps: -1, CompletionMarker: "x"}, true},
		{"min above max", LoopConfig{MaxSteps: 5, MinSteps: 6, CompletionMarker: "x"}, true},
		{"empty marker", LoopConfig{MaxSteps: 5, MinSteps: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
