// Package chain реализует цикл рассуждения Chain-of-Tools.
package chain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// ReasoningState содержит состояние одной сессии рассуждения.
//
// Transcript — append-only: фрагменты генератора и результаты
// инструментов только дописываются, ранее добавленный текст никогда
// не переписывается. Answer накапливает те же приращения без
// начального CoT-промпта — это ответ пользователю, а не контекст
// модели.
//
// Rule 5: Все изменения состояния проходят через методы этого типа.
type ReasoningState struct {
	mu sync.RWMutex

	// Входные данные (неизменяемые после создания)
	query string

	transcript strings.Builder
	answer     strings.Builder
	records    []tools.InvocationRecord
	step       int
}

// NewReasoningState создаёт состояние с начальным CoT-промптом.
//
// Transcript начинается со структурного промпта, ориентирующего
// генератор на пошаговое рассуждение; answer начинается пустым.
func NewReasoningState(query string) *ReasoningState {
	s := &ReasoningState{query: query}
	s.transcript.WriteString(initialPrompt(query))
	return s
}

// initialPrompt формирует стартовый Chain-of-Thought промпт.
func initialPrompt(query string) string {
	return fmt.Sprintf(
		"Let's think step by step to answer the following question:\n%s\n\nI'll break this down to determine what we need to know:\n",
		query)
}

// Query возвращает исходный запрос пользователя.
func (s *ReasoningState) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Step возвращает номер текущего шага (thread-safe).
func (s *ReasoningState) Step() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// AdvanceStep увеличивает счётчик шагов и возвращает новый номер.
func (s *ReasoningState) AdvanceStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	return s.step
}

// Transcript возвращает текущий контекст целиком (thread-safe).
func (s *ReasoningState) Transcript() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.String()
}

// Answer возвращает накопленный ответ без начального промпта.
func (s *ReasoningState) Answer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answer.String()
}

// AppendIncrement дописывает фрагмент генератора в transcript и answer.
func (s *ReasoningState) AppendIncrement(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.WriteString(fragment)
	s.answer.WriteString(fragment)
}

// FoldToolResult вшивает результат инструмента в контекст.
//
// Результат оборачивается в повествовательную прозу — дальнейшая
// генерация видит его как обычный текст рассуждения, без специальной
// разметки.
func (s *ReasoningState) FoldToolResult(result string) {
	folded := fmt.Sprintf("\nUsing a tool, I found: %s\n", result)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.WriteString(folded)
	s.answer.WriteString(folded)
}

// FoldToolFailure вшивает уведомление о неудачном вызове инструмента.
//
// Неудача — часть рассуждения, а не конец сессии: цикл продолжается,
// а генератор видит, что инструмент не помог.
func (s *ReasoningState) FoldToolFailure(toolName, reason string) {
	folded := fmt.Sprintf("\nI tried to use %s, but it failed: %s\n", toolName, reason)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.WriteString(folded)
	s.answer.WriteString(folded)
}

// FoldGenerationFailure вшивает уведомление об отказе генератора.
//
// Симметрично FoldToolFailure: генерация на шаге не удалась, но
// накопленный контекст остаётся пригодным для следующих шагов.
func (s *ReasoningState) FoldGenerationFailure(reason string) {
	folded := fmt.Sprintf("\nI tried to continue reasoning, but generation failed: %s\n", reason)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.WriteString(folded)
	s.answer.WriteString(folded)
}

// FoldNoToolsAvailable вшивает уведомление о пустом каталоге.
func (s *ReasoningState) FoldNoToolsAvailable() {
	const folded = "\nI looked for a suitable tool, but none are available.\n"
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.WriteString(folded)
	s.answer.WriteString(folded)
}

// RecordInvocation добавляет запись о вызове инструмента.
//
// Записи append-only и после добавления не мутируются.
func (s *ReasoningState) RecordInvocation(rec tools.InvocationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Invocations возвращает копию записей вызовов (thread-safe).
func (s *ReasoningState) Invocations() []tools.InvocationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tools.InvocationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// HasMarker проверяет наличие маркера завершения в transcript.
func (s *ReasoningState) HasMarker(marker string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.Contains(s.transcript.String(), marker)
}

// String возвращает строковое представление состояния (для дебага).
func (s *ReasoningState) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("ReasoningState{Step: %d, Transcript: %d chars, Tools: %d}",
		s.step, s.transcript.Len(), len(s.records))
}
