package std

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/s3storage"
)

// fakeStorage — управляемая реализация s3storage.ClientInterface.
type fakeStorage struct {
	files map[string][]byte
}

func (s *fakeStorage) ListFiles(_ context.Context, prefix string) ([]s3storage.StoredObject, error) {
	var out []s3storage.StoredObject
	for key, data := range s.files {
		if strings.HasPrefix(key, prefix) {
			out = append(out, s3storage.StoredObject{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (s *fakeStorage) DownloadFile(_ context.Context, key string) ([]byte, error) {
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("object %q does not exist", key)
	}
	return data, nil
}

var _ s3storage.ClientInterface = (*fakeStorage)(nil)

func fixedClock() func() time.Time {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

// TestProjectFileTool_UnsupportedFormat тестирует что неподдерживаемый
// формат приходит результатом, а не ошибкой.
func TestProjectFileTool_UnsupportedFormat(t *testing.T) {
	tool := NewProjectFileTool(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		path string
	}{
		{"docx", "schedule.docx"},
		{"no extension", "schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(ctx, `{"file_path":"`+tt.path+`","operation":"tasks"}`)
			if err != nil {
				t.Fatalf("Unsupported format must fold into the result, got error: %v", err)
			}
			if !strings.HasPrefix(got, "Error: Unsupported file format") {
				t.Errorf("Execute(%s) = %q, want unsupported-format message", tt.path, got)
			}
			if !strings.Contains(got, ".mpp") {
				t.Errorf("Message should list supported formats: %q", got)
			}
		})
	}
}

// TestProjectFileTool_Tasks тестирует извлечение задач.
func TestProjectFileTool_Tasks(t *testing.T) {
	tool := NewProjectFileTool(nil, WithClock(fixedClock()))
	ctx := context.Background()

	got, err := tool.Execute(ctx, `{"file_path":"plan.mpp","operation":"tasks"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.HasPrefix(got, "Tasks extracted from plan.mpp:") {
		t.Errorf("Header missing: %q", firstLineOf(got))
	}
	if !strings.Contains(got, "Name: Project Initiation") {
		t.Errorf("Missing task name: %q", got)
	}
	// Даты отсчитываются от инжектированных часов
	if !strings.Contains(got, "Start: 2025-06-02") {
		t.Errorf("Task dates should derive from the injected clock: %q", got)
	}
}

// TestProjectFileTool_Resources тестирует извлечение ресурсов.
func TestProjectFileTool_Resources(t *testing.T) {
	tool := NewProjectFileTool(nil)
	ctx := context.Background()

	got, err := tool.Execute(ctx, `{"file_path":"plan.xer","operation":"resources"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(got, "Resources extracted from plan.xer:") {
		t.Errorf("Header missing: %q", firstLineOf(got))
	}
	if !strings.Contains(got, "Name: Solution Architect") {
		t.Errorf("Missing resource: %q", got)
	}
	if !strings.Contains(got, "Cost: $120/h") {
		t.Errorf("Missing resource cost: %q", got)
	}
}

// TestProjectFileTool_Analyze тестирует сводный анализ (операция по
// умолчанию).
func TestProjectFileTool_Analyze(t *testing.T) {
	tool := NewProjectFileTool(nil, WithClock(fixedClock()))
	ctx := context.Background()

	for _, op := range []string{"", "analyze"} {
		got, err := tool.Execute(ctx, `{"file_path":"plan.p6xml","operation":"`+op+`"}`)
		if err != nil {
			t.Fatalf("Execute(op=%q): %v", op, err)
		}
		if !strings.HasPrefix(got, "Project Analysis for plan.p6xml:") {
			t.Errorf("Header missing for op %q: %q", op, firstLineOf(got))
		}
		if !strings.Contains(got, "Critical Path: 45d") {
			t.Errorf("Missing critical path for op %q", op)
		}
		if !strings.Contains(got, "Identified Risks:") || !strings.Contains(got, "Recommendations:") {
			t.Errorf("Missing risks/recommendations sections for op %q", op)
		}
	}
}

// TestProjectFileTool_StorageMissing тестирует недоступный файл в хранилище.
func TestProjectFileTool_StorageMissing(t *testing.T) {
	storage := &fakeStorage{files: map[string][]byte{
		"present.mpp": []byte("binary"),
	}}
	tool := NewProjectFileTool(storage)
	ctx := context.Background()

	got, err := tool.Execute(ctx, `{"file_path":"absent.mpp","operation":"tasks"}`)
	if err != nil {
		t.Fatalf("Missing file must fold into the result, got error: %v", err)
	}
	if got != "Error: File absent.mpp not found." {
		t.Errorf("Execute = %q, want not-found message", got)
	}

	// Существующий файл обрабатывается
	got, err = tool.Execute(ctx, `{"file_path":"present.mpp","operation":"tasks"}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(got, "Tasks extracted from present.mpp:") {
		t.Errorf("Execute = %q, want task extraction", firstLineOf(got))
	}
}

// TestProjectFileTool_UnknownOperation тестирует отказ незнакомой операции.
func TestProjectFileTool_UnknownOperation(t *testing.T) {
	tool := NewProjectFileTool(nil)
	ctx := context.Background()

	if _, err := tool.Execute(ctx, `{"file_path":"plan.mpp","operation":"explode"}`); err == nil {
		t.Error("Unknown operation expected error, got nil")
	}
	if _, err := tool.Execute(ctx, `{"operation":"tasks"}`); err == nil {
		t.Error("Missing file_path expected error, got nil")
	}
}
