package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canvistapp/canvist/internal/crypto"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/workflow"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so queries can run
// inside or outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderStore persists orders and items. Every guard-check-then-write flow is
// a single transaction, and status transitions re-validate their precondition
// in the WHERE clause so two concurrent requests cannot both pass a stale
// check.
type OrderStore struct {
	pool      *pgxpool.Pool
	encryptor crypto.Encryptor
}

func NewOrderStore(pool *pgxpool.Pool, encryptor crypto.Encryptor) (*OrderStore, error) {
	if encryptor == nil {
		return nil, fmt.Errorf("encryptor is required")
	}
	return &OrderStore{pool: pool, encryptor: encryptor}, nil
}

const orderColumns = `id, public_id, user_id, email, status, subtotal_bani, shipping_bani, total_bani,
	shipping_country, shipping_address_enc, tracking_number, carrier,
	created_at, updated_at, paid_at, shipped_at, delivered_at, cancelled_at`

// Create inserts a fresh draft order and its creation event.
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO orders (public_id, user_id, email, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, order.PublicID, order.UserID, order.Email, string(workflow.OrderDraft))
		if err := row.Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		order.Status = workflow.OrderDraft

		return insertEvent(ctx, tx, &models.Event{
			OrderID: order.ID,
			Type:    models.EventOrderCreated,
			Actor:   eventActor(order.UserID),
		})
	})
}

// GetByPublicID loads an order with its items and per-item upload counts.
func (s *OrderStore) GetByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE public_id = $1`, publicID)
	order, err := s.scanOrder(row)
	if err != nil {
		return nil, err
	}

	items, err := s.loadItems(ctx, s.pool, order.ID)
	if err != nil {
		return nil, err
	}
	uploads, err := s.loadUploads(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.Uploads = uploads[item.ID]
	}
	order.Items = items
	return order, nil
}

// loadUploads returns the order's item-assigned uploads grouped by item id.
func (s *OrderStore) loadUploads(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID][]*models.Upload, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, item_id, kind, storage_key, file_name, content_type, size_bytes, created_at
		FROM uploads WHERE order_id = $1 AND item_id IS NOT NULL ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	uploads := make(map[uuid.UUID][]*models.Upload)
	for rows.Next() {
		upload := &models.Upload{}
		var kind string
		if err := rows.Scan(&upload.ID, &upload.OrderID, &upload.ItemID, &kind, &upload.StorageKey,
			&upload.FileName, &upload.ContentType, &upload.SizeBytes, &upload.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		upload.Kind = models.UploadKind(kind)
		uploads[*upload.ItemID] = append(uploads[*upload.ItemID], upload)
	}
	return uploads, rows.Err()
}

// GetItemByPublicID loads one item of an order, with upload counts.
func (s *OrderStore) GetItemByPublicID(ctx context.Context, orderID uuid.UUID, itemPublicID string) (*models.OrderItem, error) {
	rows, err := s.pool.Query(ctx, itemQuery+` AND i.public_id = $2 GROUP BY i.id`, orderID, itemPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

// ListRecent returns the newest orders with their items, for the admin list.
func (s *OrderStore) ListRecent(ctx context.Context, limit int) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return s.scanOrdersWithItems(ctx, rows)
}

// ListByUser returns a customer's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return s.scanOrdersWithItems(ctx, rows)
}

// AddItem inserts an item, guarded on the order still being editable, and
// recomputes the order totals in the same transaction.
func (s *OrderStore) AddItem(ctx context.Context, orderID uuid.UUID, item *models.OrderItem) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, public_id, status, theme_slug, size, frame_color, frame_model, paper_finish, quantity, base_price_bani)
			SELECT o.id, $2, $3, $4, $5, $6, $7, $8, $9, $10
			FROM orders o
			WHERE o.id = $1 AND o.status IN ('DRAFT', 'SUBMITTED')
			RETURNING id, created_at, updated_at
		`, orderID, item.PublicID, string(item.Status), item.ThemeSlug, item.Size,
			item.FrameColor, item.FrameModel, item.PaperFinish, item.Quantity, item.BasePriceBani)
		if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStateConflict
			}
			return fmt.Errorf("failed to insert item: %w", err)
		}
		item.OrderID = orderID

		if err := recomputeTotals(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &item.ID,
			Type:    models.EventItemAdded,
			Message: item.Size + " / " + item.FrameColor,
		})
	})
}

// ConfigureItem updates an item's configuration, guarded on order
// editability, and recomputes totals.
func (s *OrderStore) ConfigureItem(ctx context.Context, orderID, itemID uuid.UUID, item *models.OrderItem) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE order_items i
			SET theme_slug = $3, size = $4, frame_color = $5, frame_model = $6,
			    quantity = $7, base_price_bani = $8, updated_at = now()
			FROM orders o
			WHERE i.id = $2 AND i.order_id = $1 AND o.id = i.order_id
			  AND o.status IN ('DRAFT', 'SUBMITTED')
		`, orderID, itemID, item.ThemeSlug, item.Size, item.FrameColor, item.FrameModel,
			item.Quantity, item.BasePriceBani)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		if err := recomputeTotals(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &itemID,
			Type:    models.EventItemConfigured,
			Message: item.Size + " / " + item.FrameColor + " / " + item.FrameModel,
		})
	})
}

// SetShippingAddress stores the encrypted address and destination country and
// recomputes totals with the new shipping cost, guarded on editability.
func (s *OrderStore) SetShippingAddress(ctx context.Context, orderID uuid.UUID, address *models.ShippingAddress, shippingBani int) error {
	payload, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}
	encrypted, err := s.encryptor.Encrypt(string(payload))
	if err != nil {
		return fmt.Errorf("failed to encrypt shipping address: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET shipping_country = $2, shipping_address_enc = $3, updated_at = now()
			WHERE id = $1 AND status IN ('DRAFT', 'SUBMITTED')
		`, orderID, address.Country, encrypted)
		if err != nil {
			return fmt.Errorf("failed to update shipping address: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		if err := setTotals(ctx, tx, orderID, shippingBani); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			Type:    models.EventAddressUpdated,
			Message: address.Country,
		})
	})
}

// Pay performs the mock payment: every draft item advances to
// PAID_AWAITING_PREVIEW, the order is stamped paid and its status recomputed.
func (s *OrderStore) Pay(ctx context.Context, orderID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET paid_at = now(), updated_at = now()
			WHERE id = $1 AND status IN ('DRAFT', 'SUBMITTED')
		`, orderID)
		if err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		if _, err := tx.Exec(ctx, `
			UPDATE order_items SET status = $2, updated_at = now()
			WHERE order_id = $1 AND status = $3
		`, orderID, string(workflow.ItemPaidAwaitingPreview), string(workflow.ItemDraft)); err != nil {
			return fmt.Errorf("failed to advance items: %w", err)
		}

		if _, err := recomputeStatus(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			Type:    models.EventPaymentMock,
			Message: "mock payment accepted",
		})
	})
}

// ApproveItem advances a previewed item into production. The PREVIEW_READY
// precondition is re-validated in the WHERE clause.
func (s *OrderStore) ApproveItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE order_items
			SET status = $3, approved_at = now(), updated_at = now()
			WHERE id = $2 AND order_id = $1 AND status = $4
		`, orderID, itemID, string(workflow.ItemApprovedInProduction), string(workflow.ItemPreviewReady))
		if err != nil {
			return fmt.Errorf("failed to approve item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		if _, err := recomputeStatus(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &itemID,
			Type:    models.EventItemApproved,
		})
	})
}

// RequestRevision uses up the item's single revision. The revision_used flag
// only ever flips to true.
func (s *OrderStore) RequestRevision(ctx context.Context, orderID, itemID uuid.UUID, notes string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE order_items
			SET status = $3, revision_used = true, revision_notes = $4, updated_at = now()
			WHERE id = $2 AND order_id = $1 AND status = $5 AND revision_used = false
		`, orderID, itemID, string(workflow.ItemRevisionRequested), notes, string(workflow.ItemPreviewReady))
		if err != nil {
			return fmt.Errorf("failed to request revision: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		if _, err := recomputeStatus(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &itemID,
			Type:    models.EventItemRevisionRequested,
			Message: notes,
		})
	})
}

// MarkPreviewReady moves an item to PREVIEW_READY after an admin preview
// upload and stamps preview_ready_at.
func (s *OrderStore) MarkPreviewReady(ctx context.Context, orderID, itemID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE order_items
			SET status = $3, preview_ready_at = now(), updated_at = now()
			WHERE id = $2 AND order_id = $1
		`, orderID, itemID, string(workflow.ItemPreviewReady))
		if err != nil {
			return fmt.Errorf("failed to mark preview ready: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := recomputeStatus(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &itemID,
			Type:    models.EventItemPreviewReady,
			Actor:   "admin",
		})
	})
}

// OverrideItemStatus is the admin escape hatch: set an item to any canonical
// status, stamp the matching timestamp and recompute the order status.
func (s *OrderStore) OverrideItemStatus(ctx context.Context, orderID, itemID uuid.UUID, target workflow.ItemStatus, trackingNumber string) error {
	query := `UPDATE order_items SET status = $3, updated_at = now()`
	if column := workflow.TimestampColumn(target); column != "" {
		// Column names come from a fixed switch over the status enum, never
		// from caller input.
		query += fmt.Sprintf(", %s = COALESCE(%s, now())", column, column)
	}
	if trackingNumber != "" {
		query += ", tracking_number = $4"
	}
	query += ` WHERE id = $2 AND order_id = $1`

	args := []any{orderID, itemID, string(target)}
	if trackingNumber != "" {
		args = append(args, trackingNumber)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to override item status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := recomputeStatus(ctx, tx, orderID); err != nil {
			return err
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			ItemID:  &itemID,
			Type:    models.EventAdminStatusOverride,
			Actor:   "admin",
			Message: string(target),
		})
	})
}

// Cancel sets the order to CANCELLED. Customer edits are blocked by the
// editability guards, but approval-stage item actions are gated on item
// status only and recompute the order status again; re-cancelling after one
// slips in is an admin action.
func (s *OrderStore) Cancel(ctx context.Context, orderID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders SET status = $2, cancelled_at = now(), updated_at = now()
			WHERE id = $1 AND status <> $2
		`, orderID, string(workflow.OrderCancelled))
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}
		return insertEvent(ctx, tx, &models.Event{
			OrderID: orderID,
			Type:    models.EventOrderCancelled,
			Actor:   "admin",
		})
	})
}

// recomputeStatus reloads all sibling item statuses, runs the aggregation and
// overwrites the persisted order status. Order-level shipped/delivered
// timestamps are stamped the first time the aggregate reaches them.
func recomputeStatus(ctx context.Context, q dbtx, orderID uuid.UUID) (workflow.OrderStatus, error) {
	rows, err := q.Query(ctx, `SELECT status FROM order_items WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to load item statuses: %w", err)
	}
	defer rows.Close()

	var statuses []workflow.ItemStatus
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return "", fmt.Errorf("failed to scan item status: %w", err)
		}
		status, err := workflow.ParseItemStatus(raw)
		if err != nil {
			return "", err
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	status := workflow.ComputeOrderStatus(statuses)
	_, err = q.Exec(ctx, `
		UPDATE orders
		SET status = $2,
		    shipped_at = CASE WHEN $2 = 'SHIPPED' AND shipped_at IS NULL THEN now() ELSE shipped_at END,
		    delivered_at = CASE WHEN $2 = 'DELIVERED' AND delivered_at IS NULL THEN now() ELSE delivered_at END,
		    updated_at = now()
		WHERE id = $1
	`, orderID, string(status))
	if err != nil {
		return "", fmt.Errorf("failed to persist order status: %w", err)
	}
	return status, nil
}

// recomputeTotals refreshes the money fields from the current items, keeping
// the stored shipping cost.
func recomputeTotals(ctx context.Context, q dbtx, orderID uuid.UUID) error {
	var shippingBani int
	if err := q.QueryRow(ctx, `SELECT shipping_bani FROM orders WHERE id = $1`, orderID).Scan(&shippingBani); err != nil {
		return fmt.Errorf("failed to load shipping cost: %w", err)
	}
	return setTotals(ctx, q, orderID, shippingBani)
}

// setTotals loads the current line items, runs the pure totals computation
// and persists the result with the given shipping cost.
func setTotals(ctx context.Context, q dbtx, orderID uuid.UUID, shippingBani int) error {
	rows, err := q.Query(ctx, `SELECT base_price_bani, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	var items []workflow.LineItem
	for rows.Next() {
		var item workflow.LineItem
		if err := rows.Scan(&item.BasePriceBani, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	totals := workflow.ComputeTotals(items, shippingBani)
	if _, err := q.Exec(ctx, `
		UPDATE orders
		SET subtotal_bani = $2, shipping_bani = $3, total_bani = $4, updated_at = now()
		WHERE id = $1
	`, orderID, totals.SubtotalBani, totals.ShippingBani, totals.TotalBani); err != nil {
		return fmt.Errorf("failed to persist totals: %w", err)
	}
	return nil
}

const itemQuery = `
	SELECT i.id, i.order_id, i.public_id, i.status, i.theme_slug, i.size, i.frame_color, i.frame_model,
	       i.paper_finish, i.quantity, i.base_price_bani, i.revision_used, i.revision_notes, i.tracking_number,
	       i.created_at, i.updated_at, i.preview_ready_at, i.approved_at, i.production_started_at, i.shipped_at,
	       COUNT(u.id) FILTER (WHERE u.kind = 'CUSTOMER_PHOTO') AS photo_count,
	       COUNT(u.id) FILTER (WHERE u.kind = 'PREVIEW_IMAGE') AS preview_count
	FROM order_items i
	LEFT JOIN uploads u ON u.item_id = i.id
	WHERE i.order_id = $1`

func (s *OrderStore) loadItems(ctx context.Context, q dbtx, orderID uuid.UUID) ([]*models.OrderItem, error) {
	rows, err := q.Query(ctx, itemQuery+` GROUP BY i.id ORDER BY i.created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]*models.OrderItem, error) {
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		var (
			rawStatus                                            string
			previewReadyAt, approvedAt, productionStart, shipped pgtype.Timestamptz
			photoCount, previewCount                             int64
		)
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.PublicID, &rawStatus, &item.ThemeSlug, &item.Size,
			&item.FrameColor, &item.FrameModel, &item.PaperFinish, &item.Quantity, &item.BasePriceBani,
			&item.RevisionUsed, &item.RevisionNotes, &item.TrackingNumber,
			&item.CreatedAt, &item.UpdatedAt, &previewReadyAt, &approvedAt, &productionStart, &shipped,
			&photoCount, &previewCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		status, err := workflow.ParseItemStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		item.Status = status
		item.PhotoCount = int(photoCount)
		item.PreviewCount = int(previewCount)
		if previewReadyAt.Valid {
			item.PreviewReadyAt = previewReadyAt.Time
		}
		if approvedAt.Valid {
			item.ApprovedAt = approvedAt.Time
		}
		if productionStart.Valid {
			item.ProductionStartedAt = productionStart.Time
		}
		if shipped.Valid {
			item.ShippedAt = shipped.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *OrderStore) scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	var (
		rawStatus                                 string
		addressEnc                                pgtype.Text
		paidAt, shippedAt, deliveredAt, cancelled pgtype.Timestamptz
	)
	if err := row.Scan(
		&order.ID, &order.PublicID, &order.UserID, &order.Email, &rawStatus,
		&order.SubtotalBani, &order.ShippingBani, &order.TotalBani,
		&order.ShippingCountry, &addressEnc, &order.TrackingNumber, &order.Carrier,
		&order.CreatedAt, &order.UpdatedAt, &paidAt, &shippedAt, &deliveredAt, &cancelled,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	status, err := workflow.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	order.Status = status

	if addressEnc.Valid && addressEnc.String != "" {
		decrypted, err := s.encryptor.Decrypt(addressEnc.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt shipping address: %w", err)
		}
		address := &models.ShippingAddress{}
		if err := json.Unmarshal([]byte(decrypted), address); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
		order.ShippingAddress = address
	}

	if paidAt.Valid {
		order.PaidAt = paidAt.Time
	}
	if shippedAt.Valid {
		order.ShippedAt = shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = deliveredAt.Time
	}
	if cancelled.Valid {
		order.CancelledAt = cancelled.Time
	}
	return order, nil
}

func (s *OrderStore) scanOrdersWithItems(ctx context.Context, rows pgx.Rows) ([]*models.Order, error) {
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := s.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := s.loadItems(ctx, s.pool, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func eventActor(userID *uuid.UUID) string {
	if userID == nil {
		return "guest"
	}
	return "customer"
}
