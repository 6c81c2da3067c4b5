// Контракт энкодера. Через него работают и query, и tool энкодеры.

package embedding

import (
	"context"
	"fmt"
)

// DefaultDim — размерность эмбеддингов по умолчанию.
const DefaultDim = 768

// Encoder — контракт для любого энкодера текста.
//
// Две логические роли (query encoder и tool encoder) используют один и
// тот же контракт и одну размерность — различается только конфигурация
// конкретного экземпляра.
//
// Гарантии контракта:
//   - Возвращаемый вектор имеет настроенную размерность D
//   - Вектор нормализован к единичной длине (или нулевой, если исходная
//     норма была ровно 0)
//   - Никаких side effects: чистая функция от текста и конфигурации
type Encoder interface {
	// Encode кодирует текст в вектор.
	Encode(ctx context.Context, text string) (Vector, error)

	// BatchEncode кодирует несколько текстов, сохраняя порядок.
	//
	// Наблюдаемо эквивалентен последовательным вызовам Encode.
	// Реализации могут батчить внутри для эффективности.
	BatchEncode(ctx context.Context, texts []string) ([]Vector, error)
}

// validateDim проверяет размерность при конструировании энкодера.
//
// Rule 7: Ошибка конфигурации обнаруживается при создании,
// а не при первом использовании.
func validateDim(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("embedding dim must be positive, got %d", dim)
	}
	return nil
}

// batchEncode — общая реализация BatchEncode через поэлементный Encode.
func batchEncode(ctx context.Context, enc Encoder, texts []string) ([]Vector, error) {
	result := make([]Vector, 0, len(texts))
	for _, text := range texts {
		vec, err := enc.Encode(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("batch encode failed at item %d: %w", len(result), err)
		}
		result = append(result, vec)
	}
	return result, nil
}
