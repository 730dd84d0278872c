package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinic-relay/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.ChatMessage) error
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	ListSessions(ctx context.Context) ([]domain.SessionSummary, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (id, session_id, sender_type, content, seq, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.SessionID,
		message.SenderType,
		message.Content,
		message.Seq,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListBySessionID(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	const query = `
		SELECT id, session_id, sender_type, content, seq, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		err = rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.SenderType,
			&msg.Content,
			&msg.Seq,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// ListSessions agrupa el historial por sesión y resuelve el nombre del
// paciente por teléfono cuando existe. DISTINCT ON toma el último mensaje.
func (r *PgMessageRepository) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	const query = `
		SELECT last.session_id,
		       COALESCE(p.name, ''),
		       last.content,
		       last.sender_type,
		       agg.message_count,
		       agg.last_activity
		FROM (
			SELECT DISTINCT ON (session_id) session_id, content, sender_type
			FROM chat_messages
			ORDER BY session_id, created_at DESC, id DESC
		) last
		JOIN (
			SELECT session_id, COUNT(*) AS message_count, MAX(created_at) AS last_activity
			FROM chat_messages
			GROUP BY session_id
		) agg ON agg.session_id = last.session_id
		LEFT JOIN patients p ON p.phone = last.session_id
		ORDER BY agg.last_activity DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.SessionSummary
	for rows.Next() {
		var s domain.SessionSummary
		err = rows.Scan(
			&s.SessionID,
			&s.PatientName,
			&s.LastMessage,
			&s.LastSender,
			&s.MessageCount,
			&s.LastActivity,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
