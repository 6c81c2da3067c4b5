// Package gate решает, нужен ли инструмент на текущем шаге рассуждения.
//
// Gate получает снимок состояния reasoning цикла, считает уверенность
// [0,1] что следующий шаг требует вызова инструмента, и сравнивает её
// с порогом. Решение принимается на каждом шаге заново, ничего не
// персистится.
package gate

// Snapshot — снимок состояния рассуждения для оценки Gate.
//
// Tagged variant вместо duck-typing: поведение Gate определено явно
// для каждого варианта. Текстовый снимок оценивается по лексическим
// сигналам; для непрозрачного снимка лексический сигнал недоступен
// и Gate возвращает fallback оценку из инжектированного источника
// случайности (детерминируемо в тестах).
//
// Sealed: только типы этого пакета реализуют интерфейс.
type Snapshot interface {
	snapshot()
}

// TextSnapshot — снимок, представимый как текст.
//
// Обычный случай: генератор отдаёт накопленный transcript.
type TextSnapshot struct {
	Text string
}

func (TextSnapshot) snapshot() {}

// OpaqueSnapshot — непрозрачный снимок (хэндл реального hidden state).
//
// Lexical сигнала нет; Gate возвращает fallback оценку.
type OpaqueSnapshot struct {
	Handle any
}

func (OpaqueSnapshot) snapshot() {}
