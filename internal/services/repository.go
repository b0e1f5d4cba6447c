package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/session"
	"github.com/canvistapp/canvist/internal/workflow"
)

// orderRepo is the slice of the order store the services depend on. The db
// implementation runs each mutation in one transaction with the guard
// re-validated in SQL.
type orderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	GetByPublicID(ctx context.Context, publicID string) (*models.Order, error)
	GetItemByPublicID(ctx context.Context, orderID uuid.UUID, itemPublicID string) (*models.OrderItem, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	AddItem(ctx context.Context, orderID uuid.UUID, item *models.OrderItem) error
	ConfigureItem(ctx context.Context, orderID, itemID uuid.UUID, item *models.OrderItem) error
	SetShippingAddress(ctx context.Context, orderID uuid.UUID, address *models.ShippingAddress, shippingBani int) error
	Pay(ctx context.Context, orderID uuid.UUID) error
	ApproveItem(ctx context.Context, orderID, itemID uuid.UUID) error
	RequestRevision(ctx context.Context, orderID, itemID uuid.UUID, notes string) error
	MarkPreviewReady(ctx context.Context, orderID, itemID uuid.UUID) error
	OverrideItemStatus(ctx context.Context, orderID, itemID uuid.UUID, target workflow.ItemStatus, trackingNumber string) error
	Cancel(ctx context.Context, orderID uuid.UUID) error
}

type uploadRepo interface {
	Create(ctx context.Context, upload *models.Upload) error
	GetByID(ctx context.Context, orderID, uploadID uuid.UUID) (*models.Upload, error)
	DeleteCustomerPhoto(ctx context.Context, orderID, uploadID uuid.UUID) (string, error)
	AssignToItem(ctx context.Context, orderID, uploadID, itemID uuid.UUID) error
}

type eventRepo interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Event, error)
}

type userRepo interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// Viewer identifies who is making a request. Orders without an owner are
// reachable by their public id alone (capability URL, guest checkout).
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

func ViewerFromSession(data *session.Data) Viewer {
	if data == nil {
		return Viewer{}
	}
	return Viewer{UserID: data.UserID, Admin: data.IsAdmin}
}

func canAccessOrder(order *models.Order, viewer Viewer) bool {
	if viewer.Admin {
		return true
	}
	if order.UserID == nil {
		return true
	}
	return viewer.UserID == *order.UserID
}
