// Package catalog — каталог инструментов с retrieval по эмбеддингам.
//
// Каталог — рабочее множество в памяти: записи живут в process-local
// map, персистентность подключается явно через LoadFromStore /
// PersistToStore. Отказ хранилища деградирует в memory-only режим,
// а не останавливает цикл рассуждения.
//
// Rule 5: Все операции thread-safe через sync.RWMutex.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/embedding"
)

// Entry — одна запись каталога.
//
// Идентификатор стабилен в пределах жизни процесса; Vector — эмбеддинг
// описания, вычисленный tool-энкодером при регистрации.
type Entry struct {
	ID          int64
	Name        string
	Description string
	Vector      embedding.Vector
	CreatedAt   time.Time
}

// Match — результат поиска ближайшего инструмента.
type Match struct {
	Entry Entry
	// Score — скалярное произведение запроса и вектора записи.
	// Для unit-нормализованных векторов эквивалентно cosine similarity.
	Score float64
}

// Store — контракт персистентного хранилища каталога.
//
// Порт в терминах Port & Adapter: каталог зависит только от этого
// интерфейса, конкретный адаптер (sqlite) живёт в pkg/storage.
type Store interface {
	// LoadAll возвращает все сохранённые записи.
	// Эмбеддинг записи может отсутствовать (nil) — тогда каталог
	// вычисляет его заново при гидрации.
	LoadAll(ctx context.Context) ([]StoredTool, error)

	// Insert сохраняет запись и возвращает присвоенный хранилищем id.
	Insert(ctx context.Context, name, description string, vec embedding.Vector) (int64, error)
}

// StoredTool — запись инструмента в том виде, в каком её отдаёт хранилище.
type StoredTool struct {
	ID          int64
	Name        string
	Description string
	Vector      embedding.Vector // nil если эмбеддинг не сохранялся
	CreatedAt   time.Time
}

// Catalog — потокобезопасный каталог инструментов.
type Catalog struct {
	mu      sync.RWMutex
	encoder embedding.Encoder
	entries map[int64]Entry
	byName  map[string]int64
	nextID  int64

	// persisted — имена записей, уже записанных в хранилище.
	// PersistToStore пропускает их, чтобы не плодить дубликаты.
	persisted map[string]bool
}

// New создает каталог с заданным tool-энкодером.
//
// Энкодер обязателен: запись без эмбеддинга невозможно найти через
// FindSimilar.
func New(encoder embedding.Encoder) (*Catalog, error) {
	if encoder == nil {
		return nil, fmt.Errorf("catalog requires a tool encoder")
	}
	return &Catalog{
		encoder:   encoder,
		entries:   make(map[int64]Entry),
		byName:    make(map[string]int64),
		nextID:    1,
		persisted: make(map[string]bool),
	}, nil
}

// Register добавляет инструмент в каталог.
//
// Вычисляет эмбеддинг описания, присваивает новый идентификатор и
// возвращает созданную запись. Дублирующее имя → DuplicateToolError,
// каталог не меняется.
//
// Rule 11: принимает context — энкодер может ходить по сети.
func (c *Catalog) Register(ctx context.Context, name, description string) (Entry, error) {
	if name == "" {
		return Entry{}, fmt.Errorf("tool name cannot be empty")
	}

	c.mu.RLock()
	_, exists := c.byName[name]
	c.mu.RUnlock()
	if exists {
		return Entry{}, &DuplicateToolError{Name: name}
	}

	// Эмбеддинг считаем вне блокировки: сетевой энкодер не должен
	// держать каталог закрытым.
	vec, err := c.encoder.Encode(ctx, description)
	if err != nil {
		return Entry{}, fmt.Errorf("encode tool description: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Перепроверка под write-блокировкой: имя могли занять между
	// RUnlock и Lock.
	if _, exists := c.byName[name]; exists {
		return Entry{}, &DuplicateToolError{Name: name}
	}

	entry := Entry{
		ID:          c.nextID,
		Name:        name,
		Description: description,
		Vector:      vec,
		CreatedAt:   time.Now(),
	}
	c.nextID++
	c.entries[entry.ID] = entry
	c.byName[entry.Name] = entry.ID

	return entry, nil
}

// Get возвращает запись по идентификатору.
//
// Неизвестный id → NotFoundError.
func (c *Catalog) Get(id int64) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	if !ok {
		return Entry{}, &NotFoundError{ID: id}
	}
	return entry, nil
}

// Len возвращает число записей в каталоге.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries возвращает все записи, отсортированные по идентификатору.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindSimilar возвращает запись, ближайшую к вектору запроса.
//
// Сходство — скалярное произведение; лучшая запись — argmax. При
// равных оценках выигрывает меньший идентификатор (детерминированный
// tie-break). Пустой каталог — не ошибка: возвращается (nil, nil).
// Несовпадение размерностей — ошибка (fail fast, silent mis-scoring
// хуже отказа).
func (c *Catalog) FindSimilar(query embedding.Vector) (*Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return nil, nil
	}

	var best *Match
	// Обходим в порядке возрастания id — tie-break получается
	// автоматически из строгого сравнения score > best.Score.
	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		entry := c.entries[id]
		score, err := query.Dot(entry.Vector)
		if err != nil {
			return nil, fmt.Errorf("score tool %q: %w", entry.Name, err)
		}
		if best == nil || score > best.Score {
			best = &Match{Entry: entry, Score: score}
		}
	}

	return best, nil
}

// LoadFromStore гидрирует каталог из персистентного хранилища.
//
// Записи без сохранённого эмбеддинга прогоняются через энкодер заново.
// Уже существующие имена пропускаются — гидрация не затирает рабочее
// множество. nextID поднимается выше максимального загруженного id.
func (c *Catalog) LoadFromStore(ctx context.Context, store Store) (int, error) {
	stored, err := store.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load tool catalog: %w", err)
	}

	loaded := 0
	for _, st := range stored {
		vec := st.Vector
		if vec == nil {
			vec, err = c.encoder.Encode(ctx, st.Description)
			if err != nil {
				return loaded, fmt.Errorf("re-encode tool %q: %w", st.Name, err)
			}
		}

		c.mu.Lock()
		if _, exists := c.byName[st.Name]; exists {
			c.mu.Unlock()
			continue
		}
		entry := Entry{
			ID:          st.ID,
			Name:        st.Name,
			Description: st.Description,
			Vector:      vec,
			CreatedAt:   st.CreatedAt,
		}
		c.entries[entry.ID] = entry
		c.byName[entry.Name] = entry.ID
		c.persisted[entry.Name] = true
		if st.ID >= c.nextID {
			c.nextID = st.ID + 1
		}
		c.mu.Unlock()
		loaded++
	}

	return loaded, nil
}

// PersistToStore сбрасывает в хранилище записи, которых там ещё нет.
//
// Идентификаторы в памяти не перенумеровываются: стабильность id в
// пределах процесса важнее совпадения с id хранилища. Возвращает число
// записанных инструментов.
func (c *Catalog) PersistToStore(ctx context.Context, store Store) (int, error) {
	for _, entry := range c.Entries() {
		c.mu.RLock()
		done := c.persisted[entry.Name]
		c.mu.RUnlock()
		if done {
			continue
		}

		if _, err := store.Insert(ctx, entry.Name, entry.Description, entry.Vector); err != nil {
			return c.persistedCount(), fmt.Errorf("persist tool %q: %w", entry.Name, err)
		}

		c.mu.Lock()
		c.persisted[entry.Name] = true
		c.mu.Unlock()
	}
	return c.persistedCount(), nil
}

func (c *Catalog) persistedCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.persisted)
}
