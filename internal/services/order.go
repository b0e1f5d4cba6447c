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

	"github.com/canvistapp/canvist/internal/catalog"
	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/observability"
	"github.com/canvistapp/canvist/internal/publicid"
	"github.com/canvistapp/canvist/internal/shipping"
	"github.com/canvistapp/canvist/internal/workflow"
)

// OrderService implements the customer-facing order workflow: draft
// creation, item configuration, shipping address, mock payment, approval and
// revision. Every mutation recomputes the order status from all sibling
// items inside the store's transaction.
type OrderService struct {
	orders      orderRepo
	themes      *catalog.Themes
	emailSender WorkflowEmailSender
	logger      *slog.Logger
}

func NewOrderService(orders orderRepo, themes *catalog.Themes, emailSender WorkflowEmailSender, logger *slog.Logger) *OrderService {
	if emailSender == nil {
		emailSender = noopEmailSender{}
	}
	return &OrderService{
		orders:      orders,
		themes:      themes,
		emailSender: emailSender,
		logger:      logger,
	}
}

func (s *OrderService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// CreateOrder opens a fresh draft, owned by the session user when present.
func (s *OrderService) CreateOrder(ctx context.Context, viewer Viewer, email string) (*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.order.create",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("CreateOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	id, err := publicid.New()
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		PublicID: id,
		Email:    strings.TrimSpace(email),
	}
	if viewer.UserID != uuid.Nil {
		userID := viewer.UserID
		order.UserID = &userID
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	observability.MeterFromContext(ctx).Count("order.created", 1)
	s.loggerFromContext(ctx).Info("order created", "order_id", order.PublicID, "guest", order.UserID == nil)
	return order, nil
}

// GetOrder loads an order for a viewer. Owned orders are invisible to anyone
// but their owner or an admin; the caller cannot tell absence from denial.
func (s *OrderService) GetOrder(ctx context.Context, publicID string, viewer Viewer) (*models.Order, error) {
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListUserOrders returns the authenticated customer's orders.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// AddItem appends a default-configured item for a theme to an editable order.
func (s *OrderService) AddItem(ctx context.Context, publicID, themeSlug string, viewer Viewer) (*models.OrderItem, error) {
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckConfigure(order.Status); err != nil {
		return nil, err
	}
	if _, ok := s.themes.BySlug(themeSlug); !ok {
		return nil, validationErrorf("unknown theme: %q", themeSlug)
	}

	basePrice, err := catalog.BasePriceBani(catalog.DefaultSize)
	if err != nil {
		return nil, err
	}
	itemID, err := publicid.New()
	if err != nil {
		return nil, err
	}

	item := &models.OrderItem{
		PublicID:      itemID,
		Status:        workflow.ItemDraft,
		ThemeSlug:     themeSlug,
		Size:          catalog.DefaultSize,
		FrameColor:    catalog.DefaultFrameColor,
		FrameModel:    catalog.DefaultFrameModel,
		PaperFinish:   catalog.PaperFinish,
		Quantity:      1,
		BasePriceBani: basePrice,
	}

	if err := s.orders.AddItem(ctx, order.ID, item); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return nil, workflow.ErrOrderNotEditable
		}
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	observability.MeterFromContext(ctx).Count("order.item.added", 1, sentry.WithAttributes(
		attribute.String("theme", themeSlug),
	))
	return item, nil
}

// ConfigureItemInput is the customer-chosen configuration for one item.
type ConfigureItemInput struct {
	ThemeSlug  string
	Size       string
	FrameColor string
	FrameModel string
	Quantity   int
}

// ConfigureItem updates an item's configuration and re-snapshots its base
// price, then recomputes totals.
func (s *OrderService) ConfigureItem(ctx context.Context, publicID, itemPublicID string, input ConfigureItemInput, viewer Viewer) (*models.OrderItem, error) {
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckConfigure(order.Status); err != nil {
		return nil, err
	}

	if _, ok := s.themes.BySlug(input.ThemeSlug); !ok {
		return nil, validationErrorf("unknown theme: %q", input.ThemeSlug)
	}
	if err := catalog.ValidateItemConfig(catalog.ItemConfig{
		Size:       input.Size,
		FrameColor: input.FrameColor,
		FrameModel: input.FrameModel,
		Quantity:   input.Quantity,
	}); err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	item, err := s.orders.GetItemByPublicID(ctx, order.ID, itemPublicID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	basePrice, err := catalog.BasePriceBani(input.Size)
	if err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	item.ThemeSlug = input.ThemeSlug
	item.Size = input.Size
	item.FrameColor = input.FrameColor
	item.FrameModel = input.FrameModel
	item.Quantity = input.Quantity
	item.BasePriceBani = basePrice

	if err := s.orders.ConfigureItem(ctx, order.ID, item.ID, item); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return nil, workflow.ErrOrderNotEditable
		}
		return nil, fmt.Errorf("failed to configure item: %w", err)
	}
	return item, nil
}

// SetShippingAddress stores the destination and reprices shipping from the
// zone table in the same transaction as the totals update.
func (s *OrderService) SetShippingAddress(ctx context.Context, publicID string, address *models.ShippingAddress, viewer Viewer) (*models.Order, error) {
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return nil, err
	}
	if err := workflow.CheckConfigure(order.Status); err != nil {
		return nil, err
	}
	if address == nil || address.Name == "" || address.Line1 == "" || address.City == "" ||
		address.PostalCode == "" || address.Country == "" {
		return nil, validationErrorf("name, line1, city, postal code and country are required")
	}
	address.Country = strings.ToUpper(strings.TrimSpace(address.Country))

	cost := shipping.CostBani(address.Country)
	if err := s.orders.SetShippingAddress(ctx, order.ID, address, cost); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return nil, workflow.ErrOrderNotEditable
		}
		return nil, fmt.Errorf("failed to set shipping address: %w", err)
	}

	return s.loadOrder(ctx, publicID, viewer)
}

// Pay performs the simulated payment. It is an idempotent no-op on an
// already-paid order, and fails listing the items short on photos otherwise.
func (s *OrderService) Pay(ctx context.Context, publicID string, viewer Viewer) (alreadyPaid bool, err error) {
	span := sentry.StartSpan(
		ctx,
		"service.order.pay",
		sentry.WithOpName("service.order"),
		sentry.WithDescription("Pay"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return false, err
	}

	if len(order.Items) == 0 {
		return false, validationErrorf("order has no items")
	}

	counts := make([]workflow.ItemPhotoCount, len(order.Items))
	for i, item := range order.Items {
		counts[i] = workflow.ItemPhotoCount{ItemPublicID: item.PublicID, Count: item.PhotoCount}
	}

	alreadyPaid, err = workflow.CheckPay(order.Status, counts)
	if err != nil {
		meter.Count("order.payment.rejected", 1, sentry.WithAttributes(
			attribute.String("reason", "insufficient_photos"),
		))
		return false, err
	}
	if alreadyPaid {
		meter.Count("order.payment.duplicate", 1)
		return true, nil
	}

	if err := s.orders.Pay(ctx, order.ID); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return false, workflow.ErrOrderNotEditable
		}
		return false, fmt.Errorf("failed to pay order: %w", err)
	}
	meter.Count("order.payment.accepted", 1)

	if emailErr := s.emailSender.SendOrderPaid(ctx, order); emailErr != nil {
		s.loggerFromContext(ctx).Warn("failed to send order-paid email", "error", emailErr, "order_id", order.PublicID)
	}
	return false, nil
}

// ApproveItem moves a previewed item into production.
func (s *OrderService) ApproveItem(ctx context.Context, publicID, itemPublicID string, viewer Viewer) error {
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return err
	}
	item, err := s.findItem(order, itemPublicID)
	if err != nil {
		return err
	}
	if err := workflow.CheckApprove(item.Status); err != nil {
		return err
	}

	if err := s.orders.ApproveItem(ctx, order.ID, item.ID); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return workflow.ErrItemNotApprovable
		}
		return fmt.Errorf("failed to approve item: %w", err)
	}
	observability.MeterFromContext(ctx).Count("order.item.approved", 1)
	return nil
}

// RequestRevision uses up the item's single permitted revision.
func (s *OrderService) RequestRevision(ctx context.Context, publicID, itemPublicID, notes string, viewer Viewer) error {
	order, err := s.loadOrder(ctx, publicID, viewer)
	if err != nil {
		return err
	}
	item, err := s.findItem(order, itemPublicID)
	if err != nil {
		return err
	}
	if err := workflow.CheckRequestRevision(item.Status, item.RevisionUsed, notes); err != nil {
		return err
	}

	notes = strings.TrimSpace(notes)
	if err := s.orders.RequestRevision(ctx, order.ID, item.ID, notes); err != nil {
		if errors.Is(err, db.ErrStateConflict) {
			return workflow.ErrItemNotRevisable
		}
		return fmt.Errorf("failed to request revision: %w", err)
	}
	observability.MeterFromContext(ctx).Count("order.item.revision_requested", 1)

	if emailErr := s.emailSender.SendRevisionRequested(ctx, order, item.PublicID, notes); emailErr != nil {
		s.loggerFromContext(ctx).Warn("failed to send revision email", "error", emailErr, "order_id", order.PublicID)
	}
	return nil
}

func (s *OrderService) loadOrder(ctx context.Context, publicID string, viewer Viewer) (*models.Order, error) {
	if !publicid.Valid(publicID) {
		return nil, ErrNotFound
	}
	order, err := s.orders.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !canAccessOrder(order, viewer) {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) findItem(order *models.Order, itemPublicID string) (*models.OrderItem, error) {
	for _, item := range order.Items {
		if item.PublicID == itemPublicID {
			return item, nil
		}
	}
	return nil, ErrNotFound
}
