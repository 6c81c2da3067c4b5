package gate

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DefaultThreshold — порог принятия решения по умолчанию.
const DefaultThreshold = 0.5

// Score — результат оценки Gate на одном шаге.
//
// Не персистится; вычисляется заново на каждом шаге.
type Score struct {
	// Value — уверенность [0,1] что нужен инструмент
	Value float64

	// ToolNeeded — Value > threshold
	ToolNeeded bool
}

// Rand — инжектируемый источник случайности.
//
// Продакшен использует math/rand с временным seed; тесты подставляют
// фиксированный источник и получают воспроизводимую последовательность.
type Rand interface {
	// Float64 возвращает число в [0,1).
	Float64() float64
}

// Judge — лексическая модель "нужен ли инструмент".
//
// Фиксированная таблица trigger-фраз с базовыми уверенностями; оценка —
// максимум базовых уверенностей среди фраз, найденных как подстроки
// текста снимка (в нижнем регистре), ноль если совпадений нет.
//
// Максимум вместо суммы: пересекающиеся сигналы не считаются дважды,
// а решение монотонно — добавление ещё одной совпавшей фразы никогда
// не уменьшает оценку.
//
// К оценке добавляется ограниченное возмущение из rng (эмуляция
// неопределённости модели), результат всегда зажат в [0,1].
//
// Thread-safe при thread-safe rng: таблица и порог неизменяемы после
// создания.
type Judge struct {
	threshold    float64
	perturbation float64
	triggers     map[string]float64
	rng          Rand
}

// Option — функциональная опция для NewJudge.
type Option func(*Judge)

// WithRand подставляет источник случайности (для тестов).
func WithRand(rng Rand) Option {
	return func(j *Judge) {
		j.rng = rng
	}
}

// WithPerturbation задаёт амплитуду возмущения оценки.
//
// 0 отключает возмущение полностью (строгая детерминированность).
// Дефолт: 0.1, как возмущение ±0.1 к базовой уверенности.
func WithPerturbation(p float64) Option {
	return func(j *Judge) {
		j.perturbation = p
	}
}

// WithTriggers заменяет таблицу trigger-фраз.
//
// По умолчанию используется defaultTriggers.
func WithTriggers(triggers map[string]float64) Option {
	return func(j *Judge) {
		j.triggers = triggers
	}
}

// NewJudge создаёт Judge с заданным порогом.
//
// Rule 7: порог вне [0,1] — ошибка конфигурации, возвращается при
// создании, а не при первом запросе.
func NewJudge(threshold float64, opts ...Option) (*Judge, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("gate threshold must be in [0,1], got %g", threshold)
	}

	j := &Judge{
		threshold:    threshold,
		perturbation: 0.1,
		triggers:     defaultTriggers,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(j)
	}

	return j, nil
}

// Threshold возвращает настроенный порог.
func (j *Judge) Threshold() float64 {
	return j.threshold
}

// Evaluate оценивает снимок и возвращает Score с решением.
func (j *Judge) Evaluate(snapshot Snapshot) Score {
	value := j.score(snapshot)
	return Score{
		Value:      value,
		ToolNeeded: value > j.threshold,
	}
}

// Decide возвращает true если на этом шаге нужен инструмент.
//
// Эквивалентно Evaluate(snapshot).ToolNeeded.
func (j *Judge) Decide(snapshot Snapshot) bool {
	return j.Evaluate(snapshot).ToolNeeded
}

// score считает уверенность для снимка.
//
// TextSnapshot: max по совпавшим trigger-фразам + возмущение, clamp [0,1].
// OpaqueSnapshot: fallback оценка из rng — цикл продолжает работу даже
// без лексического сигнала.
func (j *Judge) score(snapshot Snapshot) float64 {
	text, ok := snapshot.(TextSnapshot)
	if !ok {
		return j.rng.Float64()
	}

	content := strings.ToLower(text.Text)
	maxScore := 0.0
	for phrase, base := range j.triggers {
		if strings.Contains(content, phrase) && base > maxScore {
			maxScore = base
		}
	}

	if j.perturbation > 0 {
		maxScore += (j.rng.Float64()*2 - 1) * j.perturbation
	}

	return clamp01(maxScore)
}

// clamp01 зажимает значение в [0,1].
func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// defaultTriggers — базовая таблица trigger-фраз.
//
// Фразы сгруппированы по типам инструментов; уверенность отражает
// насколько однозначно фраза указывает на необходимость внешнего вызова.
var defaultTriggers = map[string]float64{
	// Погода
	"weather":     0.8,
	"temperature": 0.75,
	"forecast":    0.85,
	"climate":     0.7,

	// Локации и карты
	"location": 0.75,
	"capital":  0.9,
	"country":  0.7,
	"city":     0.65,

	// Вычисления
	"calculate": 0.95,
	"compute":   0.9,
	"solve":     0.8,
	"equation":  0.85,
	"formula":   0.85,

	// Перевод
	"translate": 0.95,
	"language":  0.75,
	"french":    0.7,
	"spanish":   0.7,
	"german":    0.7,

	// Веб-поиск
	"search":           0.9,
	"find information": 0.85,
	"look up":          0.8,
	"find out":         0.75,

	// Новости
	"news":           0.8,
	"recent":         0.7,
	"latest":         0.75,
	"current events": 0.9,

	// Веб-контент
	"website": 0.85,
	"webpage": 0.85,
	"url":     0.9,
	"link":    0.8,

	// Проектные файлы
	"project file":       0.95,
	"project schedule":   0.95,
	"mpp":                0.95,
	"xer":                0.95,
	"critical path":      0.9,
	"tasks":              0.8,
	"resources":          0.8,
	"project management": 0.85,
}
