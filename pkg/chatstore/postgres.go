package chatstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`create table if not exists chat_messages (
		id uuid primary key,
		session_id text not null,
		role text not null,
		text text not null,
		created_at timestamptz not null default now()
	)`,
	`create index if not exists chat_messages_session_created_idx on chat_messages (session_id, created_at)`,
}

// PostgresStore keeps messages in the chat_messages table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	limit int
}

// NewPostgresStore opens a pool on dsn and checks connectivity.
func NewPostgresStore(ctx context.Context, dsn string, limit int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("chatstore: postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("chatstore: postgres ping: %w", err)
	}
	return &PostgresStore{pool: pool, limit: limit}, nil
}

// Migrate creates the table and index when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("chatstore: migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, msg *Message) error {
	if err := checkMessage(msg); err != nil {
		return err
	}
	id := uuid.NewString()
	err := s.pool.QueryRow(ctx,
		`insert into chat_messages (id, session_id, role, text) values ($1, $2, $3, $4) returning created_at`,
		id, msg.SessionID, string(msg.Role), msg.Text,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("chatstore: insert: %w", err)
	}
	msg.ID = id
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) ([]Message, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	query := `select id::text, session_id, role, text, created_at from chat_messages
		where session_id = $1 order by created_at, id`
	args := []any{sessionID}
	if s.limit > 0 {
		query = `select * from (
			select id::text, session_id, role, text, created_at from chat_messages
			where session_id = $1 order by created_at desc, id desc limit $2
		) recent order by created_at, id`
		args = append(args, s.limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("chatstore: query: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m    Message
			role string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chatstore: scan: %w", err)
		}
		m.Role = Role(role)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatstore: rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `delete from chat_messages where session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("chatstore: delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
