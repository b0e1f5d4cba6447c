package workflow

// LineItem is the pricing view of an order item. BasePriceBani is the unit
// price snapshotted at configuration time, in minor currency units.
type LineItem struct {
	BasePriceBani int
	Quantity      int
}

// Totals holds an order's monetary fields in minor currency units. The
// invariant Total == Subtotal + Shipping holds by construction.
type Totals struct {
	SubtotalBani int
	ShippingBani int
	TotalBani    int
}

// ComputeTotals recomputes order totals from the current line items and the
// shipping cost for the destination. All arithmetic is integral; there is no
// floating point anywhere in the money path.
func ComputeTotals(items []LineItem, shippingBani int) Totals {
	subtotal := 0
	for _, item := range items {
		subtotal += item.BasePriceBani * item.Quantity
	}
	return Totals{
		SubtotalBani: subtotal,
		ShippingBani: shippingBani,
		TotalBani:    subtotal + shippingBani,
	}
}
