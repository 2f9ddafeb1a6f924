package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/rankbot/internal/domain"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, id, chatID int64, sess *domain.Session) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if id == 0 {
		err = tx.QueryRow(ctx,
			`INSERT INTO sessions (chat_id, remote_id, title) VALUES ($1, $2, $3) RETURNING id`,
			chatID, sess.ID, sess.Title,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert session: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE sessions SET remote_id = $2, title = $3, updated_at = now() WHERE id = $1`,
			id, sess.ID, sess.Title,
		)
		if err != nil {
			return 0, fmt.Errorf("update session: %w", err)
		}
		if _, err = tx.Exec(ctx, `DELETE FROM session_messages WHERE session_id = $1`, id); err != nil {
			return 0, fmt.Errorf("clear messages: %w", err)
		}
	}

	// Messages are replaced wholesale: reconciliation may have rewritten
	// the whole list, so an append-only archive would drift.
	for i, m := range sess.Messages {
		var tableJSON []byte
		if m.Table != nil {
			tableJSON, err = json.Marshal(m.Table)
			if err != nil {
				return 0, fmt.Errorf("marshal table: %w", err)
			}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO session_messages (session_id, position, role, text, render_kind, table_data)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, i, string(m.Role), m.Text, string(m.Kind), tableJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) List(ctx context.Context, chatID int64, limit, offset int) ([]SessionRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT s.id, s.chat_id, s.remote_id, s.title, s.created_at, s.updated_at,
		        COALESCE((SELECT m.text FROM session_messages m
		                  WHERE m.session_id = s.id AND m.role = 'user'
		                  ORDER BY m.position LIMIT 1), '')
		 FROM sessions s
		 WHERE s.chat_id = $1
		 ORDER BY s.updated_at DESC
		 LIMIT $2 OFFSET $3`,
		chatID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.ID, &r.ChatID, &r.RemoteID, &r.Title, &r.CreatedAt, &r.UpdatedAt, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, chatID int64) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE chat_id = $1`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Load(ctx context.Context, id int64) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.QueryRow(ctx,
		`SELECT remote_id, title FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.Title)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT role, text, render_kind, table_data
		 FROM session_messages WHERE session_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role, text, kind string
			tableJSON        []byte
		)
		if err := rows.Scan(&role, &text, &kind, &tableJSON); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m := domain.Message{Role: domain.Role(role), Text: text, Kind: domain.RenderKind(kind)}
		if len(tableJSON) > 0 {
			var table domain.TableData
			if err := json.Unmarshal(tableJSON, &table); err != nil {
				return nil, fmt.Errorf("unmarshal table: %w", err)
			}
			m.Table = &table
		}
		sess.Append(m)
	}
	return sess, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context, chatID int64) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}
