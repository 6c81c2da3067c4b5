package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// echoTool возвращает полученный JSON как результат.
type echoTool struct {
	name string
}

func (t *echoTool) Definition() Definition {
	return Definition{Name: t.name, Description: "echoes parameters"}
}

func (t *echoTool) Execute(_ context.Context, argsJSON string) (string, error) {
	return "echo: " + argsJSON, nil
}

// failTool всегда возвращает ошибку.
type failTool struct{}

func (failTool) Definition() Definition {
	return Definition{Name: "Boom", Description: "always fails"}
}

func (failTool) Execute(context.Context, string) (string, error) {
	return "", fmt.Errorf("boom")
}

// slowTool блокируется до отмены контекста.
type slowTool struct{}

func (slowTool) Definition() Definition {
	return Definition{Name: "Slow", Description: "never finishes"}
}

func (slowTool) Execute(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// TestRegistry_RegisterAndGet тестирует регистрацию и поиск по имени.
func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&echoTool{name: "Echo"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tool, err := r.Get("Echo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tool.Definition().Name != "Echo" {
		t.Errorf("Got tool %q, want Echo", tool.Definition().Name)
	}
}

// TestRegistry_Register_EmptyName тестирует отказ пустого имени.
func TestRegistry_Register_EmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&echoTool{name: ""}); err == nil {
		t.Fatal("Register with empty name expected error, got nil")
	}
}

// TestRegistry_Get_Unknown тестирует типизированную not-found ошибку.
func TestRegistry_Get_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("Nope")
	var unknown *UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownToolError, got %v", err)
	}
	if unknown.Name != "Nope" {
		t.Errorf("UnknownToolError.Name = %q, want Nope", unknown.Name)
	}
}

// TestRegistry_Invoke тестирует успешный вызов с маршалингом параметров.
func TestRegistry_Invoke(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&echoTool{name: "Echo"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := r.Invoke(context.Background(), "Echo", map[string]any{"query": "hi"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.Contains(result, `"query":"hi"`) {
		t.Errorf("Result %q does not contain marshaled params", result)
	}
}

// TestRegistry_Invoke_Unknown тестирует вызов незарегистрированного имени.
func TestRegistry_Invoke_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Invoke(context.Background(), "Ghost", nil)
	var unknown *UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownToolError, got %v", err)
	}
}

// TestRegistry_Invoke_ExecutionError тестирует оборачивание ошибки
// capability с сохранением исходной причины.
func TestRegistry_Invoke_ExecutionError(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(failTool{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := r.Invoke(context.Background(), "Boom", nil)
	var execErr *ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ToolExecutionError, got %v", err)
	}
	if execErr.Tool != "Boom" {
		t.Errorf("ToolExecutionError.Tool = %q, want Boom", execErr.Tool)
	}
	if execErr.Unwrap() == nil || execErr.Unwrap().Error() != "boom" {
		t.Errorf("Unwrap = %v, want original cause", execErr.Unwrap())
	}
}

// TestRegistry_Invoke_Timeout тестирует защиту от зависшего инструмента.
func TestRegistry_Invoke_Timeout(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(slowTool{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.SetToolTimeout("Slow", 20*time.Millisecond)

	start := time.Now()
	_, err := r.Invoke(context.Background(), "Slow", nil)
	elapsed := time.Since(start)

	var execErr *ToolExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ToolExecutionError on timeout, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Invoke took %v, timeout did not fire", elapsed)
	}
}

// TestRegistry_Names тестирует перечисление имён.
func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"A", "B", "C"} {
		if err := r.Register(&echoTool{name: name}); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	names := r.Names()
	if len(names) != 3 {
		t.Errorf("Names len = %d, want 3", len(names))
	}
	seen := make(map[string]bool)
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"A", "B", "C"} {
		if !seen[want] {
			t.Errorf("Names missing %q", want)
		}
	}
}
