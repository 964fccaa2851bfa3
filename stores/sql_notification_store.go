package stores

import (
	"context"

	"github.com/estateops/propguard"
	"github.com/google/uuid"
	"github.com/oarkflow/squealx"
)

// SQLNotificationStore persists notification records in SQL (squealx)
type SQLNotificationStore struct {
	db *squealx.DB
}

func NewSQLNotificationStore(db *squealx.DB) *SQLNotificationStore {
	return &SQLNotificationStore{db: db}
}

const notificationColumns = `id, recipient_id, sender_id, type, title, message, priority, related_entity_type, related_entity_id, created_at`

func (s *SQLNotificationStore) CreateNotification(ctx context.Context, n *propguard.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	q := `INSERT INTO notifications(id, recipient_id, sender_id, type, title, message, priority, related_entity_type, related_entity_id, created_at)
	      VALUES(:id, :recipient_id, :sender_id, :type, :title, :message, :priority, :related_entity_type, :related_entity_id, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":                  n.ID,
		"recipient_id":        n.RecipientID,
		"sender_id":           n.SenderID,
		"type":                n.Type,
		"title":               n.Title,
		"message":             n.Message,
		"priority":            n.Priority,
		"related_entity_type": n.RelatedEntityType,
		"related_entity_id":   n.RelatedEntityID,
		"created_at":          n.CreatedAt,
	})
	return err
}

func (s *SQLNotificationStore) ListNotifications(ctx context.Context, f propguard.ScopeFilter, extra map[string]any) ([]*propguard.Notification, error) {
	args := map[string]any{}
	where, err := whereClause(f, extra, args)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + notificationColumns + ` FROM notifications` + where + ` ORDER BY created_at DESC`
	r, err := s.db.NamedQueryContext(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]*propguard.Notification, 0)
	for r.Next() {
		var n propguard.Notification
		var createdRaw interface{}
		if err := r.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.RelatedEntityType, &n.RelatedEntityID, &createdRaw); err != nil {
			return nil, err
		}
		n.CreatedAt = scanTime(createdRaw)
		out = append(out, &n)
	}
	return out, nil
}
