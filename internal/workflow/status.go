// Package workflow holds the order/item lifecycle rules: the status model,
// the order-status aggregation function and the transition guards.
package workflow

import (
	"errors"
	"fmt"
)

// ItemStatus is the lifecycle state of a single order item.
type ItemStatus string

const (
	ItemDraft                ItemStatus = "DRAFT"
	ItemPaidAwaitingPreview  ItemStatus = "PAID_AWAITING_PREVIEW"
	ItemPreviewReady         ItemStatus = "PREVIEW_READY"
	ItemRevisionRequested    ItemStatus = "REVISION_REQUESTED"
	ItemApprovedInProduction ItemStatus = "APPROVED_IN_PRODUCTION"
	ItemInProduction         ItemStatus = "IN_PRODUCTION"
	ItemShipped              ItemStatus = "SHIPPED"
	ItemDelivered            ItemStatus = "DELIVERED"
)

// OrderStatus is the derived lifecycle state of a whole order. It is only
// written by ComputeOrderStatus or an explicit admin override.
type OrderStatus string

const (
	OrderDraft                OrderStatus = "DRAFT"
	OrderSubmitted            OrderStatus = "SUBMITTED"
	OrderPaidAwaitingPreview  OrderStatus = "PAID_AWAITING_PREVIEW"
	OrderPreviewReady         OrderStatus = "PREVIEW_READY"
	OrderRevisionRequested    OrderStatus = "REVISION_REQUESTED"
	OrderPartiallyApproved    OrderStatus = "PARTIALLY_APPROVED"
	OrderApprovedInProduction OrderStatus = "APPROVED_IN_PRODUCTION"
	OrderInProduction         OrderStatus = "IN_PRODUCTION"
	OrderShipped              OrderStatus = "SHIPPED"
	OrderDelivered            OrderStatus = "DELIVERED"
	OrderCancelled            OrderStatus = "CANCELLED"
)

// ErrInvalidStatus is returned when a persisted status value is not one of the
// canonical strings. The stores reject such values before they can reach the
// aggregation function.
var ErrInvalidStatus = errors.New("invalid status value")

var itemStatuses = map[ItemStatus]struct{}{
	ItemDraft:                {},
	ItemPaidAwaitingPreview:  {},
	ItemPreviewReady:         {},
	ItemRevisionRequested:    {},
	ItemApprovedInProduction: {},
	ItemInProduction:         {},
	ItemShipped:              {},
	ItemDelivered:            {},
}

var orderStatuses = map[OrderStatus]struct{}{
	OrderDraft:                {},
	OrderSubmitted:            {},
	OrderPaidAwaitingPreview:  {},
	OrderPreviewReady:         {},
	OrderRevisionRequested:    {},
	OrderPartiallyApproved:    {},
	OrderApprovedInProduction: {},
	OrderInProduction:         {},
	OrderShipped:              {},
	OrderDelivered:            {},
	OrderCancelled:            {},
}

// ParseItemStatus validates a raw status string read from storage or a request.
func ParseItemStatus(value string) (ItemStatus, error) {
	status := ItemStatus(value)
	if _, ok := itemStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q is not an item status", ErrInvalidStatus, value)
	}
	return status, nil
}

// ParseOrderStatus validates a raw order status string read from storage.
func ParseOrderStatus(value string) (OrderStatus, error) {
	status := OrderStatus(value)
	if _, ok := orderStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q is not an order status", ErrInvalidStatus, value)
	}
	return status, nil
}

// ItemStatusValues lists the canonical item statuses in lifecycle order.
func ItemStatusValues() []ItemStatus {
	return []ItemStatus{
		ItemDraft,
		ItemPaidAwaitingPreview,
		ItemPreviewReady,
		ItemRevisionRequested,
		ItemApprovedInProduction,
		ItemInProduction,
		ItemShipped,
		ItemDelivered,
	}
}

func approvedOrLater(s ItemStatus) bool {
	switch s {
	case ItemApprovedInProduction, ItemInProduction, ItemShipped, ItemDelivered:
		return true
	default:
		return false
	}
}
