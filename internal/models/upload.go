package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadKind discriminates customer photos from admin-produced previews.
type UploadKind string

const (
	UploadCustomerPhoto UploadKind = "CUSTOMER_PHOTO"
	UploadPreviewImage  UploadKind = "PREVIEW_IMAGE"
)

// Upload is a stored file tied to an order and, in the normal case, to a
// specific item. Legacy order-level uploads carry a nil ItemID until an admin
// assigns them.
type Upload struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"-"`
	ItemID      *uuid.UUID `json:"-"`
	Kind        UploadKind `json:"kind"`
	StorageKey  string     `json:"-"`
	FileName    string     `json:"fileName"`
	ContentType string     `json:"contentType"`
	SizeBytes   int64      `json:"sizeBytes"`
	URL         string     `json:"url,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
