// Журнал взаимодействий.

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// Interaction — одна завершённая сессия рассуждения.
type Interaction struct {
	ID        int64                    `json:"id"`
	Timestamp time.Time                `json:"timestamp"`
	Query     string                   `json:"user_query"`
	Response  string                   `json:"agent_response"`
	ToolsUsed []tools.InvocationRecord `json:"tools_used,omitempty"`
}

// AppendInteraction записывает завершённую сессию в журнал.
//
// Записи вызовов инструментов сериализуются в JSON; сессия без вызовов
// пишет NULL. Возвращает id записи.
func (s *Store) AppendInteraction(ctx context.Context, query, response string, used []tools.InvocationRecord) (int64, error) {
	var toolsJSON any
	if len(used) > 0 {
		raw, err := json.Marshal(used)
		if err != nil {
			return 0, fmt.Errorf("encode tool records: %w", err)
		}
		toolsJSON = string(raw)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO logs (user_query, agent_response, tools_used) VALUES (?, ?, ?)",
		query, response, toolsJSON)
	if err != nil {
		return 0, fmt.Errorf("append interaction log: %w", err)
	}
	return res.LastInsertId()
}

// RecentInteractions возвращает последние n записей журнала, новые первыми.
func (s *Store) RecentInteractions(ctx context.Context, n int) ([]Interaction, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, timestamp, user_query, agent_response, tools_used FROM logs ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query interaction log: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var (
			it        Interaction
			timestamp sql.NullTime
			response  sql.NullString
			toolsJSON sql.NullString
		)
		if err := rows.Scan(&it.ID, &timestamp, &it.Query, &response, &toolsJSON); err != nil {
			return nil, fmt.Errorf("scan interaction row: %w", err)
		}
		if timestamp.Valid {
			it.Timestamp = timestamp.Time
		}
		it.Response = response.String
		if toolsJSON.Valid && toolsJSON.String != "" {
			if err := json.Unmarshal([]byte(toolsJSON.String), &it.ToolsUsed); err != nil {
				return nil, fmt.Errorf("decode tool records for log %d: %w", it.ID, err)
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
