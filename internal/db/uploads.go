package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canvistapp/canvist/internal/models"
)

// UploadStore persists upload rows. The bytes themselves live in the storage
// provider; rows only carry the storage key.
type UploadStore struct {
	pool *pgxpool.Pool
}

func NewUploadStore(pool *pgxpool.Pool) *UploadStore {
	return &UploadStore{pool: pool}
}

// Create inserts an upload row and its audit event.
func (s *UploadStore) Create(ctx context.Context, upload *models.Upload) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO uploads (order_id, item_id, kind, storage_key, file_name, content_type, size_bytes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, upload.OrderID, upload.ItemID, string(upload.Kind), upload.StorageKey,
			upload.FileName, upload.ContentType, upload.SizeBytes)
		if err := row.Scan(&upload.ID, &upload.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert upload: %w", err)
		}

		return insertEvent(ctx, tx, &models.Event{
			OrderID: upload.OrderID,
			ItemID:  upload.ItemID,
			Type:    models.EventUploadCreated,
			Message: string(upload.Kind),
		})
	})
}

// GetByID loads one upload scoped to an order so callers cannot reach across
// orders by id.
func (s *UploadStore) GetByID(ctx context.Context, orderID, uploadID uuid.UUID) (*models.Upload, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, order_id, item_id, kind, storage_key, file_name, content_type, size_bytes, created_at
		FROM uploads WHERE id = $2 AND order_id = $1
	`, orderID, uploadID)

	upload := &models.Upload{}
	var kind string
	if err := row.Scan(&upload.ID, &upload.OrderID, &upload.ItemID, &kind, &upload.StorageKey,
		&upload.FileName, &upload.ContentType, &upload.SizeBytes, &upload.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}
	upload.Kind = models.UploadKind(kind)
	return upload, nil
}

// DeleteCustomerPhoto removes a customer photo row, re-validating in the
// WHERE clause that the order is still editable and that the row really is a
// customer photo. Returns the storage key for the best-effort file delete.
func (s *UploadStore) DeleteCustomerPhoto(ctx context.Context, orderID, uploadID uuid.UUID) (string, error) {
	var storageKey string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			DELETE FROM uploads u
			USING orders o
			WHERE u.id = $2 AND u.order_id = $1 AND o.id = u.order_id
			  AND u.kind = $3 AND o.status IN ('DRAFT', 'SUBMITTED')
			RETURNING u.storage_key, u.item_id
		`, orderID, uploadID, string(models.UploadCustomerPhoto))

		var itemID *uuid.UUID
		if err := row.Scan(&storageKey, &itemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Zero rows means either the row does not exist or the order
				// is no longer editable; only the latter is a conflict.
				var exists bool
				if checkErr := tx.QueryRow(ctx, `
					SELECT EXISTS (SELECT 1 FROM uploads WHERE id = $2 AND order_id = $1 AND kind = $3)
				`, orderID, uploadID, string(models.UploadCustomerPhoto)).Scan(&exists); checkErr != nil {
					return fmt.Errorf("failed to check upload: %w", checkErr)
				}
				if !exists {
					return ErrNotFound
				}
				return ErrStateConflict
			}
			return fmt.Errorf("failed to delete upload: %w", err)
		}

		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  itemID,
			Type:    models.EventUploadDeleted,
		})
	})
	return storageKey, err
}

// AssignToItem attaches a legacy order-level upload to an item.
func (s *UploadStore) AssignToItem(ctx context.Context, orderID, uploadID, itemID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE uploads SET item_id = $3
			WHERE id = $2 AND order_id = $1 AND item_id IS NULL
		`, orderID, uploadID, itemID)
		if err != nil {
			return fmt.Errorf("failed to assign upload: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &itemID,
			Type:    models.EventUploadAssigned,
			Actor:   "admin",
		})
	})
}
