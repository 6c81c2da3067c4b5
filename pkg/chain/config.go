package chain

import (
	"fmt"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// DefaultCompletionMarker — фраза, сигнализирующая о финальном ответе.
const DefaultCompletionMarker = "Therefore, the answer is:"

// LoopConfig — настройки цикла рассуждения.
type LoopConfig struct {
	// MaxSteps — жёсткая граница числа шагов. Цикл завершается на
	// этом шаге независимо от маркера.
	MaxSteps int

	// MinSteps — маркер завершения учитывается начиная с этого шага.
	// Ранние ложные маркеры (например, из результата инструмента)
	// не обрывают рассуждение.
	MinSteps int

	// CompletionMarker — фраза завершения в transcript.
	CompletionMarker string
}

// DefaultLoopConfig возвращает настройки по умолчанию.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxSteps:         10,
		MinSteps:         8,
		CompletionMarker: DefaultCompletionMarker,
	}
}

// Validate проверяет согласованность настроек.
//
// Rule 7: ошибки конфигурации возвращаются при создании executor,
// а не обнаруживаются посреди цикла.
func (c LoopConfig) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("loop max steps must be positive, got %d", c.MaxSteps)
	}
	if c.MinSteps < 0 {
		return fmt.Errorf("loop min steps cannot be negative, got %d", c.MinSteps)
	}
	if c.MinSteps > c.MaxSteps {
		return fmt.Errorf("loop min steps (%d) cannot exceed max steps (%d)", c.MinSteps, c.MaxSteps)
	}
	if c.CompletionMarker == "" {
		return fmt.Errorf("completion marker cannot be empty")
	}
	return nil
}

// Output — результат одной сессии рассуждения.
type Output struct {
	// Answer — финальный ответ (без начального промпта, trimmed).
	Answer string

	// Steps — число выполненных шагов.
	Steps int

	// ToolsUsed — записи вызовов инструментов в порядке выполнения.
	ToolsUsed []tools.InvocationRecord

	// Completed — true если цикл остановился по маркеру завершения,
	// false если упёрся в MaxSteps.
	Completed bool

	// Duration — длительность сессии.
	Duration time.Duration

	// LogID — id записи в журнале взаимодействий; 0 если журнал
	// недоступен.
	LogID int64
}
