package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags an audit-trail entry.
type EventType string

const (
	EventOrderCreated          EventType = "ORDER_CREATED"
	EventItemAdded             EventType = "ITEM_ADDED"
	EventItemConfigured        EventType = "ITEM_CONFIGURED"
	EventAddressUpdated        EventType = "ADDRESS_UPDATED"
	EventPaymentMock           EventType = "PAYMENT_MOCK"
	EventItemPreviewReady      EventType = "ITEM_PREVIEW_READY"
	EventItemApproved          EventType = "ITEM_APPROVED"
	EventItemRevisionRequested EventType = "ITEM_REVISION_REQUESTED"
	EventAdminStatusOverride   EventType = "ADMIN_STATUS_OVERRIDE"
	EventUploadCreated         EventType = "UPLOAD_CREATED"
	EventUploadDeleted         EventType = "UPLOAD_DELETED"
	EventUploadAssigned        EventType = "UPLOAD_ASSIGNED"
	EventOrderCancelled        EventType = "ORDER_CANCELLED"
)

// Event is one append-only audit-trail entry for an order.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	OrderID   uuid.UUID  `json:"-"`
	ItemID    *uuid.UUID `json:"-"`
	Type      EventType  `json:"type"`
	Actor     string     `json:"actor"`
	Message   string     `json:"message,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
