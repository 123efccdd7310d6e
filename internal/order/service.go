package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateRequest carries everything checkout needs besides the cart itself.
type CreateRequest struct {
	Shipping      ShippingInfo
	PaymentMethod string
	PaymentStatus string
}

// Create converts the user's cart into an order: totals computed and
// frozen, line items snapshotted, stock deducted when payment is already
// settled, and the cart emptied. One transaction covers all of it.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*Order, error) {
	if req.PaymentMethod != "" && !ValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentUnpaid
	}
	if !ValidPaymentStatus(paymentStatus) {
		return nil, ErrInvalidPaymentStatus
	}

	var created *Order
	err := s.store.Checkout(ctx, func(tx Tx) error {
		lines, err := tx.CartLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		subtotal := decimal.Zero
		items := make([]Item, 0, len(lines))
		for _, line := range lines {
			lineSubtotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)
			items = append(items, Item{
				ProductID:   line.ProductID,
				VariantID:   line.VariantID,
				ProductName: line.ProductName,
				ProductSlug: line.ProductSlug,
				VariantInfo: line.VariantInfo,
				Quantity:    line.Quantity,
				Price:       line.Price,
				Subtotal:    lineSubtotal,
			})
		}
		tax, shipping, total := ComputeTotals(subtotal)

		o := &Order{
			OrderNumber:   NewOrderNumber(),
			UserID:        userID,
			Status:        StatusPending,
			PaymentStatus: PaymentUnpaid,
			PaymentMethod: req.PaymentMethod,
			Subtotal:      subtotal,
			Tax:           tax,
			ShippingCost:  shipping,
			Total:         total,
			Shipping:      req.Shipping,
		}
		deduct, _ := o.ApplyPaymentStatus(paymentStatus, time.Now().UTC())

		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, o.ID, items); err != nil {
			return err
		}
		o.Items = items

		if deduct {
			if err := tx.DeductStock(ctx, o, userID); err != nil {
				return err
			}
		}
		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// StaffUpdate is a partial lifecycle update: each present field is applied
// independently.
type StaffUpdate struct {
	Status        string
	PaymentStatus string
	PaymentMethod string
}

// Update applies a staff transition. An unrecognised status or payment
// status is skipped rather than rejected, matching the permissive
// partial-update contract. Crossing into paid deducts stock once, inside
// the same transaction as the status write.
func (s *Service) Update(ctx context.Context, actorID int64, orderNumber string, upd StaffUpdate) (*Order, error) {
	var updated *Order
	err := s.store.Transition(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderNumber)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if upd.Status != "" {
			o.ApplyStatus(upd.Status, now)
		}
		deduct := false
		if upd.PaymentStatus != "" {
			deduct, _ = o.ApplyPaymentStatus(upd.PaymentStatus, now)
		}
		if upd.PaymentMethod != "" && ValidPaymentMethod(upd.PaymentMethod) {
			o.PaymentMethod = upd.PaymentMethod
		}

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if deduct {
			if err := tx.DeductStock(ctx, o, actorID); err != nil {
				return err
			}
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel handles both self-service and staff cancellation. Self-service is
// scoped to the caller's own orders and refused after shipping; staff may
// cancel any order at any point. Stock is restored only for never-shipped
// orders, at most once.
func (s *Service) Cancel(ctx context.Context, actorID int64, orderNumber, reason string, staff bool) (*Order, error) {
	var cancelled *Order
	err := s.store.Transition(ctx, func(tx Tx) error {
		var (
			o   *Order
			err error
		)
		if staff {
			o, err = tx.OrderForUpdate(ctx, orderNumber)
		} else {
			o, err = tx.UserOrderForUpdate(ctx, actorID, orderNumber)
		}
		if err != nil {
			return err
		}

		restock, err := o.Cancel(actorID, reason, time.Now().UTC(), staff)
		if err != nil {
			return err
		}

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if restock {
			if err := tx.RestoreStock(ctx, o, actorID); err != nil {
				return err
			}
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ReceivedBack records the physical return of a shipped order and restores
// its stock, unless an earlier cancellation already did.
func (s *Service) ReceivedBack(ctx context.Context, actorID int64, orderNumber string) (*Order, error) {
	var received *Order
	err := s.store.Transition(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderNumber)
		if err != nil {
			return err
		}

		restock, err := o.MarkReceivedBack(time.Now().UTC())
		if err != nil {
			return err
		}

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if restock {
			if err := tx.RestoreStock(ctx, o, actorID); err != nil {
				return err
			}
		}

		received = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) GetUserOrder(ctx context.Context, userID int64, orderNumber string) (*Order, error) {
	return s.store.GetUserOrder(ctx, userID, orderNumber)
}

func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.store.GetByNumber(ctx, orderNumber)
}

func (s *Service) ListAll(ctx context.Context, filter StaffFilter) ([]Order, error) {
	return s.store.ListAll(ctx, filter)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}
