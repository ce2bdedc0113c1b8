package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"blog_chat_service/internal/chat/domain"
)

// MessageRepository is the append-only pairwise message log.
type MessageRepository interface {
	// Append stores one message with a server-assigned timestamp and
	// returns the stored row.
	Append(ctx context.Context, content string, senderID, recipientID int64) (*domain.Message, error)
	// HistorySince returns both directions of the pair's log with
	// created_at >= since, ascending, ties broken by insertion order.
	HistorySince(ctx context.Context, userID, counterpartyID int64, since time.Time) ([]domain.Message, error)
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository on PostgreSQL
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, content string, senderID, recipientID int64) (*domain.Message, error) {
	msg := domain.Message{
		Content:     content,
		SenderID:    senderID,
		RecipientID: recipientID,
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO chat_messages (content, sender_id, recipient_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		content, senderID, recipientID)
	if err := row.Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) HistorySince(ctx context.Context, userID, counterpartyID int64, since time.Time) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, content, sender_id, recipient_id, created_at
		 FROM chat_messages
		 WHERE ((sender_id = $1 AND recipient_id = $2)
		     OR (sender_id = $2 AND recipient_id = $1))
		   AND created_at >= $3
		 ORDER BY created_at, id`,
		userID, counterpartyID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.SenderID, &msg.RecipientID, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
