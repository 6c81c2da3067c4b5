// Симулированный энкодер для демо и тестов.

package embedding

import (
	"context"
	"hash/fnv"
	"math/rand"
)

// SimulatedEncoder — детерминированный энкодер без реальной модели.
//
// Вектор выводится из seed и хэша текста: один и тот же текст при одном
// и том же seed всегда даёт один и тот же вектор. Это заменяет
// рандомизированную генерацию эмбеддингов инжектируемым детерминированным
// источником — тесты фиксируют последовательность через seed.
//
// Production wiring подставляет OpenAIEncoder с тем же контрактом.
//
// Thread-safe: Encode создаёт свой rand.Rand на вызов, общего
// мутабельного состояния нет.
type SimulatedEncoder struct {
	dim  int
	seed int64
}

// NewSimulatedEncoder создаёт симулированный энкодер.
//
// Возвращает ошибку если dim <= 0 (configuration-fatal, Rule 7).
func NewSimulatedEncoder(dim int, seed int64) (*SimulatedEncoder, error) {
	if err := validateDim(dim); err != nil {
		return nil, err
	}
	return &SimulatedEncoder{
		dim:  dim,
		seed: seed,
	}, nil
}

// Dim возвращает настроенную размерность.
func (e *SimulatedEncoder) Dim() int {
	return e.dim
}

// Encode кодирует текст в единичный вектор.
//
// Детерминирован относительно (seed, text).
func (e *SimulatedEncoder) Encode(ctx context.Context, text string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Источник случайности привязан к seed энкодера и хэшу текста
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	src := rand.NewSource(e.seed ^ int64(h.Sum64()))
	rng := rand.New(src)

	vec := make(Vector, e.dim)
	for i := range vec {
		vec[i] = rng.NormFloat64()
	}

	return vec.Normalized(), nil
}

// BatchEncode кодирует несколько текстов, сохраняя порядок.
func (e *SimulatedEncoder) BatchEncode(ctx context.Context, texts []string) ([]Vector, error) {
	return batchEncode(ctx, e, texts)
}

// Ensure SimulatedEncoder implements Encoder
var _ Encoder = (*SimulatedEncoder)(nil)
