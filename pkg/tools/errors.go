// Типизированные ошибки invocation boundary.

package tools

import "fmt"

// UnknownToolError — инструмент с таким именем не зарегистрирован.
//
// Not-found ошибка: возвращается вызывающему типизированно,
// никогда не подменяется дефолтом.
type UnknownToolError struct {
	Name string
}

// Error реализует error интерфейс.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %q", e.Name)
}

// ToolExecutionError — ошибка выполнения инструмента.
//
// Оборачивает исходную причину в единый тип. Boundary не делает
// retry — политика повторов принадлежит вызывающему циклу, который
// здесь выбирает не повторять (неудачный вызов деградирует в failure
// notice в transcript, а не блокирует прогресс).
type ToolExecutionError struct {
	Tool string
	Err  error
}

// Error реализует error интерфейс.
func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.Tool, e.Err)
}

// Unwrap возвращает исходную причину.
func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}
