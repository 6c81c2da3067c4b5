// Типизированные ошибки каталога.

package catalog

import "fmt"

// DuplicateToolError — инструмент с таким именем уже зарегистрирован.
//
// Имена — внешний контракт, по которому инструменты вызываются, поэтому
// они уникальны; описания уникальными быть не обязаны. Регистрация
// с дублирующим именем оставляет каталог без изменений.
type DuplicateToolError struct {
	Name string
}

// Error реализует error интерфейс.
func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// NotFoundError — запись с таким идентификатором не найдена.
//
// Not-found ошибка: возвращается типизированно, никогда не подменяется
// дефолтной записью.
type NotFoundError struct {
	ID int64
}

// Error реализует error интерфейс.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool entry %d not found", e.ID)
}
