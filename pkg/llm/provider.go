// Интерфейс генератора через который работает цикл рассуждения.

package llm

import (
	"context"

	"github.com/ilkoid/cotools-ai/pkg/gate"
)

// Generator — контракт для источника текстовых приращений.
//
// Цикл рассуждения вызывает NextIncrement на каждом шаге, где gate
// решил "инструмент не нужен". Генератор получает номер шага и полный
// transcript (append-only контекст) и возвращает следующий фрагмент
// текста. Фрагмент может содержать маркер завершения — тогда цикл
// остановится, если минимальное число шагов уже пройдено.
//
// Rule 11: принимает context — реализация может ходить по сети.
type Generator interface {
	// NextIncrement возвращает следующий фрагмент рассуждения.
	NextIncrement(ctx context.Context, step int, transcript string) (string, error)

	// StateSnapshot возвращает снимок состояния для tool-need gate.
	//
	// Демо-генераторы и чат-адаптеры отдают transcript как
	// TextSnapshot; реализация с доступом к реальному hidden state
	// модели может вернуть OpaqueSnapshot.
	StateSnapshot(ctx context.Context, transcript string) gate.Snapshot
}
