package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// MinCustomerPhotosPerItem is the number of customer photos each item needs
// before the order can be paid.
const MinCustomerPhotosPerItem = 2

// MinRevisionNotesLen is the minimum length of revision request notes.
const MinRevisionNotesLen = 3

// Guard failures. The messages are user-facing and returned verbatim by the
// API, so they must stay specific to the action that failed.
var (
	ErrOrderNotEditable      = errors.New("Order is no longer editable.")
	ErrUploadsClosed         = errors.New("Uploads are closed for this order.")
	ErrItemNotApprovable     = errors.New("Item is not ready for approval.")
	ErrItemNotRevisable      = errors.New("Item is not ready for revision requests.")
	ErrRevisionAlreadyUsed   = errors.New("Revision already used for this item.")
	ErrPreviewUploadsMissing = errors.New("Cannot mark PREVIEW_READY without preview uploads.")
	ErrRevisionNotesTooShort = errors.New("Revision notes must be at least 3 characters.")
)

// InsufficientPhotosError reports which items block payment and how many
// customer photos each of them currently has.
type InsufficientPhotosError struct {
	Items []ItemPhotoCount
}

type ItemPhotoCount struct {
	ItemPublicID string `json:"itemPublicId"`
	Count        int    `json:"count"`
}

func (e *InsufficientPhotosError) Error() string {
	ids := make([]string, len(e.Items))
	for i, item := range e.Items {
		ids[i] = item.ItemPublicID
	}
	return fmt.Sprintf("Each item needs at least %d customer photos before payment. Missing: %s",
		MinCustomerPhotosPerItem, strings.Join(ids, ", "))
}

// OrderEditable reports whether items, uploads and configuration may still
// change. Once payment happens the order is frozen for the customer.
func OrderEditable(status OrderStatus) bool {
	return status == OrderDraft || status == OrderSubmitted
}

// CheckConfigure gates item configuration changes.
func CheckConfigure(orderStatus OrderStatus) error {
	if !OrderEditable(orderStatus) {
		return ErrOrderNotEditable
	}
	return nil
}

// CheckUpload gates customer photo uploads and deletions.
func CheckUpload(orderStatus OrderStatus) error {
	if !OrderEditable(orderStatus) {
		return ErrUploadsClosed
	}
	return nil
}

// CheckPay gates the mock payment. Items with fewer than
// MinCustomerPhotosPerItem customer photos block payment for the whole order.
// A nil error with alreadyPaid=true means the call is an idempotent no-op.
func CheckPay(orderStatus OrderStatus, photoCounts []ItemPhotoCount) (alreadyPaid bool, err error) {
	if orderStatus == OrderCancelled {
		return false, ErrOrderNotEditable
	}
	if !OrderEditable(orderStatus) {
		return true, nil
	}

	var short []ItemPhotoCount
	for _, c := range photoCounts {
		if c.Count < MinCustomerPhotosPerItem {
			short = append(short, c)
		}
	}
	if len(short) > 0 {
		return false, &InsufficientPhotosError{Items: short}
	}
	return false, nil
}

// CheckApprove gates customer approval of a previewed item.
func CheckApprove(itemStatus ItemStatus) error {
	if itemStatus != ItemPreviewReady {
		return ErrItemNotApprovable
	}
	return nil
}

// CheckRequestRevision gates the single permitted revision request.
func CheckRequestRevision(itemStatus ItemStatus, revisionUsed bool, notes string) error {
	if itemStatus != ItemPreviewReady {
		return ErrItemNotRevisable
	}
	if revisionUsed {
		return ErrRevisionAlreadyUsed
	}
	if len(strings.TrimSpace(notes)) < MinRevisionNotesLen {
		return ErrRevisionNotesTooShort
	}
	return nil
}

// CheckAdminOverride gates the manual status override. Marking an item
// PREVIEW_READY requires at least one preview image already attached.
func CheckAdminOverride(target ItemStatus, previewUploadCount int) error {
	if target == ItemPreviewReady && previewUploadCount < 1 {
		return ErrPreviewUploadsMissing
	}
	return nil
}

// TimestampColumn returns the order_items timestamp column stamped when an
// item enters the given status, or "" when no timestamp applies.
func TimestampColumn(status ItemStatus) string {
	switch status {
	case ItemPreviewReady:
		return "preview_ready_at"
	case ItemApprovedInProduction:
		return "approved_at"
	case ItemInProduction:
		return "production_started_at"
	case ItemShipped:
		return "shipped_at"
	default:
		return ""
	}
}
