// Реестр инструментов — invocation boundary между циклом и capabilities.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DefaultInvokeTimeout — защитный timeout выполнения инструмента.
const DefaultInvokeTimeout = 30 * time.Second

// Registry — потокобезопасное хранилище инструментов.
//
// Единый контракт вызова для цикла: резолвит имя в конкретную
// capability, собирает параметры, выполняет и захватывает результат.
type Registry struct {
	mu           sync.RWMutex
	tools        map[string]Tool
	timeout      time.Duration
	toolTimeouts map[string]time.Duration
}

// NewRegistry создает новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools:        make(map[string]Tool),
		timeout:      DefaultInvokeTimeout,
		toolTimeouts: make(map[string]time.Duration),
	}
}

// Register добавляет инструмент в реестр.
//
// Возвращает ошибку если имя пустое. Повторная регистрация того же
// имени перезаписывает инструмент — уникальность имён в каталоге
// контролирует catalog.Catalog, а не boundary.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[def.Name] = tool
	return nil
}

// Get ищет инструмент по имени.
//
// Возвращает UnknownToolError если имя не зарегистрировано.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return tool, nil
}

// Names возвращает имена всех зарегистрированных инструментов.
//
// Порядок не гарантирован.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// SetDefaultTimeout устанавливает защитный timeout для всех инструментов.
//
// Thread-safe: вызывать до начала работы цикла.
func (r *Registry) SetDefaultTimeout(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = timeout
}

// SetToolTimeout переопределяет timeout для конкретного инструмента.
//
// Полезно для медленных API (например, batch операции).
func (r *Registry) SetToolTimeout(name string, timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolTimeouts[name] = timeout
}

// Invoke выполняет инструмент по имени с переданными параметрами.
//
// Контракт boundary:
//   - неизвестное имя → UnknownToolError
//   - ошибка capability → ToolExecutionError с исходной причиной
//   - timeout защищает цикл от зависшего инструмента
//
// Retry не выполняется: политика повторов принадлежит вызывающему.
//
// Rule 7: Возвращает ошибку вместо panic.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]any) (string, error) {
	tool, err := r.Get(name)
	if err != nil {
		return "", err
	}

	argsJSON, err := json.Marshal(params)
	if err != nil {
		return "", &ToolExecutionError{Tool: name, Err: fmt.Errorf("marshal parameters: %w", err)}
	}

	r.mu.RLock()
	timeout := r.timeout
	if custom, ok := r.toolTimeouts[name]; ok {
		timeout = custom
	}
	r.mu.RUnlock()

	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Выполняем tool в отдельной goroutine для возможности отмены
	type execResult struct {
		output string
		err    error
	}
	resultChan := make(chan execResult, 1)

	go func() {
		output, execErr := tool.Execute(toolCtx, string(argsJSON))
		resultChan <- execResult{output, execErr}
	}()

	select {
	case <-toolCtx.Done():
		if toolCtx.Err() == context.DeadlineExceeded {
			return "", &ToolExecutionError{
				Tool: name,
				Err:  fmt.Errorf("execution timeout after %v", timeout),
			}
		}
		return "", &ToolExecutionError{Tool: name, Err: toolCtx.Err()}

	case res := <-resultChan:
		if res.err != nil {
			return "", &ToolExecutionError{Tool: name, Err: res.err}
		}
		return res.output, nil
	}
}
