// Package storage — sqlite-адаптер персистентности.
//
// Два независимых хранилища поверх одной базы: каталог инструментов
// (tools) и журнал взаимодействий (logs). Адаптер реализует порты из
// pkg/catalog и pkg/chain; ядро цикла о sqlite не знает.
//
// Rule 7: все отказы возвращаются как ошибки — недоступное хранилище
// деградирует в memory-only режим на стороне вызывающего, а не роняет
// процесс.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilkoid/cotools-ai/pkg/catalog"
	"github.com/ilkoid/cotools-ai/pkg/embedding"
)

// Store — соединение с sqlite базой.
type Store struct {
	db *sql.DB
}

// Open открывает (или создаёт) базу по заданному пути и применяет схему.
//
// Путь ":memory:" даёт эфемерную базу для тестов.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close закрывает соединение с базой.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate создаёт таблицы, если их ещё нет.
func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS tools (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		vector_data TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		user_query TEXT NOT NULL,
		agent_response TEXT,
		tools_used TEXT
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

// LoadAll возвращает все сохранённые инструменты.
//
// vector_data хранится как JSON-массив чисел; NULL означает что
// эмбеддинг не сохранялся и должен быть вычислен заново при гидрации.
func (s *Store) LoadAll(ctx context.Context) ([]catalog.StoredTool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, vector_data, created_at FROM tools ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query tools: %w", err)
	}
	defer rows.Close()

	var out []catalog.StoredTool
	for rows.Next() {
		var (
			st         catalog.StoredTool
			vectorData sql.NullString
			createdAt  sql.NullTime
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &vectorData, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tool row: %w", err)
		}

		if vectorData.Valid && vectorData.String != "" {
			var vec embedding.Vector
			if err := json.Unmarshal([]byte(vectorData.String), &vec); err != nil {
				return nil, fmt.Errorf("decode embedding for tool %q: %w", st.Name, err)
			}
			st.Vector = vec
		}
		if createdAt.Valid {
			st.CreatedAt = createdAt.Time
		}

		out = append(out, st)
	}
	return out, rows.Err()
}

// Insert сохраняет инструмент и возвращает присвоенный базой id.
func (s *Store) Insert(ctx context.Context, name, description string, vec embedding.Vector) (int64, error) {
	var vectorData any
	if vec != nil {
		raw, err := json.Marshal(vec)
		if err != nil {
			return 0, fmt.Errorf("encode embedding for tool %q: %w", name, err)
		}
		vectorData = string(raw)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tools (name, description, vector_data) VALUES (?, ?, ?)",
		name, description, vectorData)
	if err != nil {
		return 0, fmt.Errorf("insert tool %q: %w", name, err)
	}
	return res.LastInsertId()
}

// Compile-time проверка соответствия порту каталога.
var _ catalog.Store = (*Store)(nil)
