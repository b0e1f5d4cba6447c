package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canvistapp/canvist/internal/models"
)

// EventStore reads the append-only audit trail. Writes happen inside the
// transactions of the mutating stores via insertEvent.
type EventStore struct {
	pool *pgxpool.Pool
}

func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// ListByOrder returns an order's audit trail, oldest first.
func (s *EventStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, item_id, type, actor, message, created_at
		FROM events WHERE order_id = $1 ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		var eventType string
		if err := rows.Scan(&event.ID, &event.OrderID, &event.ItemID, &eventType,
			&event.Actor, &event.Message, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = models.EventType(eventType)
		events = append(events, event)
	}
	return events, rows.Err()
}

func insertEvent(ctx context.Context, q dbtx, event *models.Event) error {
	_, err := q.Exec(ctx, `
		INSERT INTO events (order_id, item_id, type, actor, message)
		VALUES ($1, $2, $3, $4, $5)
	`, event.OrderID, event.ItemID, string(event.Type), event.Actor, event.Message)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}
