package workflow

// ComputeOrderStatus derives an order's status from the statuses of its items.
// It is deterministic and depends only on the multiset of statuses, not their
// order. Rules are checked in priority order; the first match wins:
//
//  1. no items                      -> DRAFT
//  2. any DRAFT or awaiting preview -> PAID_AWAITING_PREVIEW
//  3. all approved or later         -> DELIVERED / SHIPPED / IN_PRODUCTION /
//     APPROVED_IN_PRODUCTION (most advanced common ground)
//  4. some approved or later        -> PARTIALLY_APPROVED
//  5. any PREVIEW_READY             -> PREVIEW_READY
//  6. any REVISION_REQUESTED        -> REVISION_REQUESTED
//  7. fallback                      -> first item's status
//
// Callers must recompute from the full current set of item statuses every time
// any item changes; the persisted order status is always overwritten, never
// incrementally patched.
func ComputeOrderStatus(statuses []ItemStatus) OrderStatus {
	if len(statuses) == 0 {
		return OrderDraft
	}

	for _, s := range statuses {
		if s == ItemDraft || s == ItemPaidAwaitingPreview {
			return OrderPaidAwaitingPreview
		}
	}

	allApproved := true
	for _, s := range statuses {
		if !approvedOrLater(s) {
			allApproved = false
			break
		}
	}
	if allApproved {
		allDelivered := true
		anyShipped := false
		anyInProduction := false
		for _, s := range statuses {
			if s != ItemDelivered {
				allDelivered = false
			}
			if s == ItemShipped {
				anyShipped = true
			}
			if s == ItemInProduction {
				anyInProduction = true
			}
		}
		switch {
		case allDelivered:
			return OrderDelivered
		case anyShipped:
			return OrderShipped
		case anyInProduction:
			return OrderInProduction
		default:
			return OrderApprovedInProduction
		}
	}

	for _, s := range statuses {
		if approvedOrLater(s) {
			return OrderPartiallyApproved
		}
	}

	for _, s := range statuses {
		if s == ItemPreviewReady {
			return OrderPreviewReady
		}
	}
	for _, s := range statuses {
		if s == ItemRevisionRequested {
			return OrderRevisionRequested
		}
	}

	return OrderStatus(statuses[0])
}
