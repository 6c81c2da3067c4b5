package llm

import (
	"context"

	"github.com/ilkoid/cotools-ai/pkg/gate"
)

// ScriptedGenerator — детерминированный генератор для демо и тестов.
//
// Фрагменты привязаны к номеру шага; шаги без сценарного фрагмента
// получают вырожденное приращение (последний символ transcript, точка
// для пустого). Сеть не используется, работает офлайн.
type ScriptedGenerator struct {
	fragments map[int]string
}

// NewScriptedGenerator создаёт генератор с заданным сценарием.
//
// nil сценарий подставляет DefaultScript.
func NewScriptedGenerator(fragments map[int]string) *ScriptedGenerator {
	if fragments == nil {
		fragments = DefaultScript()
	}
	return &ScriptedGenerator{fragments: fragments}
}

// DefaultScript возвращает демонстрационный сценарий.
//
// Сценарий рассчитан на запрос про погоду в городе назначения и
// столицу страны: шаги 3 и 5 лексически провоцируют gate на вызов
// инструмента на следующем шаге, шаг 8 несёт маркер завершения.
func DefaultScript() map[int]string {
	return map[int]string{
		1: "First, I need to understand what information we're looking for. ",
		2: "Based on the query, we need to find: (1) the weather in a destination city yesterday, and (2) the capital of that country.",
		3: "Let's determine what the destination city is from the context.",
		5: "Now that we have the weather information, let's find the capital of the country.",
		7: "To summarize the information we've found:",
		8: "Therefore, the answer is: The weather in Paris yesterday was cloudy and 65°F, and Paris is the capital of France.",
	}
}

// NextIncrement возвращает сценарный фрагмент для шага.
func (g *ScriptedGenerator) NextIncrement(_ context.Context, step int, transcript string) (string, error) {
	if fragment, ok := g.fragments[step]; ok {
		return fragment, nil
	}
	if transcript == "" {
		return ".", nil
	}
	runes := []rune(transcript)
	return string(runes[len(runes)-1]), nil
}

// StateSnapshot возвращает transcript как текстовый снимок.
//
// У сценарного генератора нет скрытого состояния: контекст и есть его
// состояние.
func (g *ScriptedGenerator) StateSnapshot(_ context.Context, transcript string) gate.Snapshot {
	return gate.TextSnapshot{Text: transcript}
}

// Compile-time проверка реализации интерфейса.
var _ Generator = (*ScriptedGenerator)(nil)
