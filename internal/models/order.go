// Package models defines the domain entities shared across the service
// layers.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/canvistapp/canvist/internal/workflow"
)

// Order is a customer order. Status is derived from the item statuses by the
// workflow aggregation and is never set directly outside an admin override.
type Order struct {
	ID              uuid.UUID            `json:"-"`
	PublicID        string               `json:"publicId"`
	UserID          *uuid.UUID           `json:"-"`
	Email           string               `json:"email,omitempty"`
	Status          workflow.OrderStatus `json:"status"`
	SubtotalBani    int                  `json:"subtotalBani"`
	ShippingBani    int                  `json:"shippingBani"`
	TotalBani       int                  `json:"totalBani"`
	ShippingCountry string               `json:"shippingCountry,omitempty"`
	ShippingAddress *ShippingAddress     `json:"shippingAddress,omitempty"`
	TrackingNumber  string               `json:"trackingNumber,omitempty"`
	Carrier         string               `json:"carrier,omitempty"`
	Items           []*OrderItem         `json:"items"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	PaidAt          time.Time            `json:"paidAt,omitzero"`
	ShippedAt       time.Time            `json:"shippedAt,omitzero"`
	DeliveredAt     time.Time            `json:"deliveredAt,omitzero"`
	CancelledAt     time.Time            `json:"cancelledAt,omitzero"`
}

// ShippingAddress is stored encrypted at rest and only decrypted when a
// customer or admin views the order.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItem is one configured print within an order.
type OrderItem struct {
	ID             uuid.UUID           `json:"-"`
	OrderID        uuid.UUID           `json:"-"`
	PublicID       string              `json:"publicId"`
	Status         workflow.ItemStatus `json:"status"`
	ThemeSlug      string              `json:"themeSlug"`
	Size           string              `json:"size"`
	FrameColor     string              `json:"frameColor"`
	FrameModel     string              `json:"frameModel"`
	PaperFinish    string              `json:"paperFinish"`
	Quantity       int                 `json:"quantity"`
	BasePriceBani  int                 `json:"basePriceBani"`
	RevisionUsed   bool                `json:"revisionUsed"`
	RevisionNotes  string              `json:"revisionNotes,omitempty"`
	TrackingNumber string              `json:"trackingNumber,omitempty"`

	// Counts are populated on read so payment gating never needs a second
	// round trip.
	PhotoCount   int `json:"photoCount"`
	PreviewCount int `json:"previewCount"`

	Uploads []*Upload `json:"uploads,omitempty"`

	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	PreviewReadyAt      time.Time `json:"previewReadyAt,omitzero"`
	ApprovedAt          time.Time `json:"approvedAt,omitzero"`
	ProductionStartedAt time.Time `json:"productionStartedAt,omitzero"`
	ShippedAt           time.Time `json:"shippedAt,omitzero"`
}
