// Package embedding предоставляет векторные представления текста для
// семантического поиска инструментов.
//
// Все векторы в системе имеют одинаковую размерность D (задаётся в конфиге)
// и нормализованы к единичной длине. Скалярное произведение двух таких
// векторов эквивалентно косинусной близости.
//
// Rule 7: Все ошибки возвращаются, нет panic.
package embedding

import (
	"fmt"
	"math"
)

// Vector — вектор фиксированной размерности.
//
// Инвариант: все векторы, попадающие в каталог, имеют одинаковую
// размерность. Сравнение векторов разной размерности — ошибка
// программирования и обнаруживается сразу (fail fast, без молчаливого
// усечения).
type Vector []float64

// DimensionMismatchError — ошибка сравнения векторов разной размерности.
//
// Configuration-fatal: указывает на неправильно настроенный деплой
// (разные энкодеры с разной размерностью), а не на runtime условие.
type DimensionMismatchError struct {
	Want int
	Got  int
}

// Error реализует error интерфейс.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Dim возвращает размерность вектора.
func (v Vector) Dim() int {
	return len(v)
}

// Dot вычисляет скалярное произведение двух векторов.
//
// Для единичных векторов результат совпадает с косинусной близостью.
// Возвращает DimensionMismatchError если размерности не совпадают.
func (v Vector) Dot(other Vector) (float64, error) {
	if len(v) != len(other) {
		return 0, &DimensionMismatchError{Want: len(v), Got: len(other)}
	}

	var sum float64
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum, nil
}

// Norm возвращает евклидову норму вектора.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalized возвращает копию вектора, нормализованную к единичной длине.
//
// Нулевой вектор остаётся нулевым (норма 0 — деление не выполняется).
func (v Vector) Normalized() Vector {
	result := make(Vector, len(v))
	norm := v.Norm()
	if norm == 0 {
		copy(result, v)
		return result
	}
	for i, x := range v {
		result[i] = x / norm
	}
	return result
}

// Clone возвращает независимую копию вектора.
//
// Каталог отдаёт наружу только копии — внутреннее хранилище
// никогда не видно вызывающему коду.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	result := make(Vector, len(v))
	copy(result, v)
	return result
}
