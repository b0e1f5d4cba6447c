package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/observability"
	"github.com/canvistapp/canvist/internal/workflow"
)

const defaultAdminOrderLimit = 100

// AdminService implements the back-office operations: order inspection,
// manual item status overrides, cancellation and upload assignment.
type AdminService struct {
	orders  orderRepo
	uploads uploadRepo
	events  eventRepo
	logger  *slog.Logger
}

func NewAdminService(orders orderRepo, uploads uploadRepo, events eventRepo, logger *slog.Logger) *AdminService {
	return &AdminService{
		orders:  orders,
		uploads: uploads,
		events:  events,
		logger:  logger,
	}
}

// ListOrders returns the most recent orders across all customers.
func (s *AdminService) ListOrders(ctx context.Context, limit int) ([]*models.Order, error) {
	if limit <= 0 || limit > defaultAdminOrderLimit {
		limit = defaultAdminOrderLimit
	}
	orders, err := s.orders.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder loads any order by public id.
func (s *AdminService) GetOrder(ctx context.Context, publicID string) (*models.Order, error) {
	order, err := s.orders.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

// ListEvents returns the order's audit trail, newest first.
func (s *AdminService) ListEvents(ctx context.Context, publicID string) ([]*models.Event, error) {
	order, err := s.GetOrder(ctx, publicID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// OverrideStatus force-sets an item's status. Marking PREVIEW_READY still
// requires an attached preview image; every other target is allowed, so an
// operator can recover from any stuck state. Shipping accepts an optional
// tracking number.
func (s *AdminService) OverrideStatus(ctx context.Context, orderPublicID, itemPublicID, target, trackingNumber string) (*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.admin.override_status",
		sentry.WithOpName("service.admin"),
		sentry.WithDescription("OverrideStatus"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	status, err := workflow.ParseItemStatus(strings.ToUpper(strings.TrimSpace(target)))
	if err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	order, err := s.GetOrder(ctx, orderPublicID)
	if err != nil {
		return nil, err
	}
	item, err := s.orders.GetItemByPublicID(ctx, order.ID, itemPublicID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := workflow.CheckAdminOverride(status, item.PreviewCount); err != nil {
		return nil, err
	}

	if err := s.orders.OverrideItemStatus(ctx, order.ID, item.ID, status, strings.TrimSpace(trackingNumber)); err != nil {
		return nil, fmt.Errorf("failed to override item status: %w", err)
	}

	observability.MeterFromContext(ctx).Count("admin.status_override", 1, sentry.WithAttributes(
		attribute.String("target", string(status)),
	))
	logging.FromContext(ctx, s.logger).Info("item status overridden",
		"order_id", order.PublicID, "item_id", item.PublicID,
		"from", string(item.Status), "to", string(status))

	return s.GetOrder(ctx, orderPublicID)
}

// Cancel cancels an order in any state except an already cancelled one.
func (s *AdminService) Cancel(ctx context.Context, publicID string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Cancel(ctx, order.ID); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return nil, validationErrorf("order is already cancelled")
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	observability.MeterFromContext(ctx).Count("admin.order_cancelled", 1)
	return s.GetOrder(ctx, publicID)
}

// AssignUpload attaches a legacy order-level upload to one of the order's
// items.
func (s *AdminService) AssignUpload(ctx context.Context, orderPublicID string, uploadID uuid.UUID, itemPublicID string) error {
	order, err := s.GetOrder(ctx, orderPublicID)
	if err != nil {
		return err
	}
	item, err := s.orders.GetItemByPublicID(ctx, order.ID, itemPublicID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	upload, err := s.uploads.GetByID(ctx, order.ID, uploadID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load upload: %w", err)
	}
	if upload.ItemID != nil {
		return validationErrorf("upload is already assigned to an item")
	}

	if err := s.uploads.AssignToItem(ctx, order.ID, uploadID, item.ID); err != nil {
		// A concurrent assignment loses the race in the WHERE clause.
		if errors.Is(err, db.ErrStateConflict) {
			return validationErrorf("upload is already assigned to an item")
		}
		return fmt.Errorf("failed to assign upload: %w", err)
	}
	return nil
}
