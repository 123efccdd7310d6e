package order

import "time"

// The lifecycle functions mutate the in-memory order and report which stock
// side effects the caller must perform in the same transaction. They never
// touch storage themselves.

// ApplyStatus sets the business status. Unknown values are ignored rather
// than rejected, so a partial staff update can carry other fields without
// tripping on this one. Transition edges are not validated, only value
// membership. The shipped and delivered timestamps are set on first entry
// into those states and never reset.
func (o *Order) ApplyStatus(newStatus string, now time.Time) bool {
	if !ValidStatus(newStatus) {
		return false
	}
	o.Status = newStatus
	if newStatus == StatusShipped && o.ShippedAt == nil {
		t := now
		o.ShippedAt = &t
	}
	if newStatus == StatusDelivered && o.DeliveredAt == nil {
		t := now
		o.DeliveredAt = &t
	}
	return true
}

// ApplyPaymentStatus sets the payment status. It reports deduct=true only
// when the order crosses into paid from a non-paid state; that is the one
// transition with a stock side effect, and the old-status guard keeps it
// from firing twice on repeated paid writes.
func (o *Order) ApplyPaymentStatus(newStatus string, now time.Time) (deduct, ok bool) {
	if !ValidPaymentStatus(newStatus) {
		return false, false
	}
	deduct = newStatus == PaymentPaid && o.PaymentStatus != PaymentPaid
	o.PaymentStatus = newStatus
	if deduct {
		t := now
		o.PaidAt = &t
	}
	return deduct, true
}

// Cancel moves the order into cancelled. Self-service callers (staff=false)
// are refused once the order has shipped; staff may cancel at any point.
// It reports restock=true when the order's stock should be returned: only
// for never-shipped orders, and only if no other path restored it already.
func (o *Order) Cancel(actorID int64, reason string, now time.Time, staff bool) (restock bool, err error) {
	if o.Status == StatusCancelled {
		return false, ErrAlreadyCancelled
	}
	if !staff && o.ShippedAt != nil {
		return false, ErrAlreadyShipped
	}

	o.Status = StatusCancelled
	t := now
	o.CancelledAt = &t
	o.CancelledBy = &actorID
	o.CancellationReason = reason

	if o.ShippedAt == nil && !o.StockRestored {
		o.StockRestored = true
		return true, nil
	}
	return false, nil
}

// MarkReceivedBack records that a shipped order's goods came back. It
// reports restock=true unless a cancellation already restored the stock.
func (o *Order) MarkReceivedBack(now time.Time) (restock bool, err error) {
	if o.ShippedAt == nil {
		return false, ErrNeverShipped
	}
	if o.IsReceivedBack {
		return false, ErrAlreadyReceived
	}

	o.IsReceivedBack = true
	t := now
	o.ReceivedBackAt = &t

	if !o.StockRestored {
		o.StockRestored = true
		return true, nil
	}
	return false, nil
}

// StockLines maps the order's items onto ledger targets for deduction and
// restoration.
func (o *Order) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, StockLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// StockLine identifies one stock counter and the quantity an order holds
// against it.
type StockLine struct {
	ProductID int64
	VariantID *int64
	Quantity  int
}
