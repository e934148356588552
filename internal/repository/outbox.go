package repository

import (
	"context"
	"github.com/beifitycom/backend/internal/models"
	"github.com/beifitycom/backend/internal/repository/postgres"
)

const (
	insertNotificationQuery = `
						INSERT INTO notification_outbox (recipient_id, kind, content, caused_by)
						VALUES ($1, $2, $3, $4)
						RETURNING id, created_at
`
	selectPendingNotificationsQuery = `
						SELECT id, recipient_id, kind, content, caused_by, status, created_at, sent_at
						FROM notification_outbox
						WHERE status = 'pending'
						ORDER BY created_at
						LIMIT $1
`
	markNotificationSentQuery = `
						UPDATE notification_outbox
						SET status = 'sent', sent_at = now()
						WHERE id = $1 AND status = 'pending'
`
)

// OutboxRepository persists the notification outbox. Enqueues happen inside
// the same atomic scope as the financial writes they announce; the worker
// drains committed entries afterwards.
type OutboxRepository struct {
	db *postgres.DB
}

// NewOutboxRepository creates new outbox repository instance
func NewOutboxRepository(db *postgres.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue appends a pending notification
func (obr *OutboxRepository) Enqueue(ctx context.Context, n *models.Notification) error {
	n.Status = models.OutboxStatusPending
	return obr.db.QueryRow(ctx, insertNotificationQuery,
		n.RecipientID, n.Kind, n.Content, n.CausedBy,
	).Scan(&n.ID, &n.CreatedAt)
}

// GetPending returns up to limit undelivered notifications, oldest first
func (obr *OutboxRepository) GetPending(ctx context.Context, limit int) ([]models.Notification, error) {
	rows, err := obr.db.Query(ctx, selectPendingNotificationsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification

	for rows.Next() {
		n := models.Notification{}
		err = rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Content, &n.CausedBy, &n.Status, &n.CreatedAt, &n.SentAt)
		if err != nil {
			continue
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkSent flips one entry to sent; a second call for the same id is a no-op
func (obr *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	_, err := obr.db.Exec(ctx, markNotificationSentQuery, id)
	return err
}
