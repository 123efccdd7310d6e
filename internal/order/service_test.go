package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeStore keeps orders, carts, and stock counters in maps so the service
// can be exercised without a database. The catalog data feeding CartLines is
// live, which lets tests prove order items are snapshots rather than
// references.
type fakeStore struct {
	products     map[int64]*fakeProduct
	cartItems    map[int64][]fakeCartItem
	orders       map[string]Order
	productStock map[int64]int
	variantStock map[int64]int
	moves        []stockMove
	nextOrderID  int64
}

type fakeProduct struct {
	name  string
	slug  string
	price decimal.Decimal
}

type fakeCartItem struct {
	productID int64
	variantID *int64
	quantity  int
}

type stockMove struct {
	orderNumber string
	productID   int64
	variantID   *int64
	delta       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:     make(map[int64]*fakeProduct),
		cartItems:    make(map[int64][]fakeCartItem),
		orders:       make(map[string]Order),
		productStock: make(map[int64]int),
		variantStock: make(map[int64]int),
		nextOrderID:  1,
	}
}

func (s *fakeStore) Checkout(ctx context.Context, fn func(tx Tx) error) error {
	return fn(&fakeTx{s: s})
}

func (s *fakeStore) Transition(ctx context.Context, fn func(tx Tx) error) error {
	return fn(&fakeTx{s: s})
}

func (s *fakeStore) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	o, ok := s.orders[orderNumber]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *fakeStore) GetUserOrder(ctx context.Context, userID int64, orderNumber string) (*Order, error) {
	o, ok := s.orders[orderNumber]
	if !ok || o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	out := make([]Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) ListAll(ctx context.Context, filter StaffFilter) ([]Order, error) {
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeStore) Stats(ctx context.Context) (*Stats, error) {
	return &Stats{TotalOrders: len(s.orders)}, nil
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) CartLines(ctx context.Context, userID int64) ([]CheckoutLine, error) {
	lines := make([]CheckoutLine, 0)
	for _, item := range t.s.cartItems[userID] {
		p := t.s.products[item.productID]
		lines = append(lines, CheckoutLine{
			ProductID:   item.productID,
			VariantID:   item.variantID,
			ProductName: p.name,
			ProductSlug: p.slug,
			Quantity:    item.quantity,
			Price:       p.price,
		})
	}
	return lines, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, o *Order) error {
	o.ID = t.s.nextOrderID
	t.s.nextOrderID++
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	t.s.orders[o.OrderNumber] = *o
	return nil
}

func (t *fakeTx) InsertItems(ctx context.Context, orderID int64, items []Item) error {
	for i := range items {
		items[i].ID = int64(i + 1)
		items[i].OrderID = orderID
	}
	for number, o := range t.s.orders {
		if o.ID == orderID {
			o.Items = append([]Item(nil), items...)
			t.s.orders[number] = o
		}
	}
	return nil
}

func (t *fakeTx) ClearCart(ctx context.Context, userID int64) error {
	delete(t.s.cartItems, userID)
	return nil
}

func (t *fakeTx) OrderForUpdate(ctx context.Context, orderNumber string) (*Order, error) {
	o, ok := t.s.orders[orderNumber]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (t *fakeTx) UserOrderForUpdate(ctx context.Context, userID int64, orderNumber string) (*Order, error) {
	o, ok := t.s.orders[orderNumber]
	if !ok || o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (t *fakeTx) UpdateOrder(ctx context.Context, o *Order) error {
	t.s.orders[o.OrderNumber] = *o
	return nil
}

func (t *fakeTx) DeductStock(ctx context.Context, o *Order, actorID int64) error {
	return t.move(o, -1)
}

func (t *fakeTx) RestoreStock(ctx context.Context, o *Order, actorID int64) error {
	return t.move(o, 1)
}

func (t *fakeTx) move(o *Order, sign int) error {
	for _, item := range o.Items {
		delta := sign * item.Quantity
		if item.VariantID != nil {
			t.s.variantStock[*item.VariantID] += delta
		} else {
			t.s.productStock[item.ProductID] += delta
		}
		t.s.moves = append(t.s.moves, stockMove{
			orderNumber: o.OrderNumber,
			productID:   item.ProductID,
			variantID:   item.VariantID,
			delta:       delta,
		})
	}
	return nil
}

func shippingFixture() ShippingInfo {
	return ShippingInfo{
		FullName:   "Aye Chan",
		Email:      "aye@example.com",
		Address:    "12 Main St",
		City:       "Yangon",
		PostalCode: "11181",
		Country:    "MM",
	}
}

// Covers the whole paid-checkout path: totals, snapshots, stock, cart.
func TestCreate_PaidCheckout(t *testing.T) {
	fs := newFakeStore()
	fs.products[1] = &fakeProduct{name: "Canvas Tote", slug: "canvas-tote", price: decimal.RequireFromString("20.00")}
	fs.productStock[1] = 10
	fs.cartItems[7] = []fakeCartItem{{productID: 1, quantity: 2}}

	svc := NewService(fs)
	o, err := svc.Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "card",
		PaymentStatus: PaymentPaid,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !o.Subtotal.Equal(decimal.RequireFromString("40.00")) {
		t.Errorf("subtotal = %s, want 40.00", o.Subtotal)
	}
	if !o.Tax.Equal(decimal.RequireFromString("3.20")) {
		t.Errorf("tax = %s, want 3.20", o.Tax)
	}
	if !o.ShippingCost.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("shipping_cost = %s, want 10.00", o.ShippingCost)
	}
	if !o.Total.Equal(decimal.RequireFromString("53.20")) {
		t.Errorf("total = %s, want 53.20", o.Total)
	}

	if o.PaymentStatus != PaymentPaid || o.PaidAt == nil {
		t.Error("paid order missing payment fields")
	}
	if len(o.Items) != 1 || o.Items[0].ProductName != "Canvas Tote" || o.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", o.Items)
	}

	if got := fs.productStock[1]; got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}
	if len(fs.moves) != 1 || fs.moves[0].delta != -2 {
		t.Fatalf("unexpected stock moves: %+v", fs.moves)
	}
	if len(fs.cartItems[7]) != 0 {
		t.Error("cart not cleared")
	}
}

func TestCreate_EmptyCart(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "card",
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("create with empty cart: %v, want ErrEmptyCart", err)
	}
}

func TestCreate_UnpaidDoesNotTouchStock(t *testing.T) {
	fs := newFakeStore()
	fs.products[1] = &fakeProduct{name: "Mug", slug: "mug", price: decimal.RequireFromString("12.00")}
	fs.productStock[1] = 5
	fs.cartItems[7] = []fakeCartItem{{productID: 1, quantity: 1}}

	svc := NewService(fs)
	o, err := svc.Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.PaymentStatus != PaymentUnpaid || o.PaidAt != nil {
		t.Error("unpaid order has payment fields set")
	}
	if fs.productStock[1] != 5 || len(fs.moves) != 0 {
		t.Error("unpaid checkout moved stock")
	}
	if len(fs.cartItems[7]) != 0 {
		t.Error("cart not cleared")
	}
}

func TestCreate_SnapshotsSurviveCatalogEdits(t *testing.T) {
	fs := newFakeStore()
	fs.products[1] = &fakeProduct{name: "Old Name", slug: "old-name", price: decimal.RequireFromString("30.00")}
	fs.cartItems[7] = []fakeCartItem{{productID: 1, quantity: 1}}

	svc := NewService(fs)
	o, err := svc.Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "eft",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fs.products[1].name = "New Name"
	fs.products[1].price = decimal.RequireFromString("99.00")

	stored, err := svc.GetUserOrder(context.Background(), 7, o.OrderNumber)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Items[0].ProductName != "Old Name" {
		t.Errorf("product_name = %q, want the snapshot", stored.Items[0].ProductName)
	}
	if !stored.Items[0].Price.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("price = %s, want the snapshot", stored.Items[0].Price)
	}
}

func paidOrderFixture(t *testing.T, fs *fakeStore) *Order {
	t.Helper()
	fs.products[1] = &fakeProduct{name: "Canvas Tote", slug: "canvas-tote", price: decimal.RequireFromString("20.00")}
	fs.productStock[1] = 10
	fs.cartItems[7] = []fakeCartItem{{productID: 1, quantity: 2}}

	o, err := NewService(fs).Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "card",
		PaymentStatus: PaymentPaid,
	})
	if err != nil {
		t.Fatalf("fixture checkout: %v", err)
	}
	return o
}

func TestUpdate_PaidTwiceDeductsOnce(t *testing.T) {
	fs := newFakeStore()
	fs.products[1] = &fakeProduct{name: "Mug", slug: "mug", price: decimal.RequireFromString("12.00")}
	fs.productStock[1] = 5
	fs.cartItems[7] = []fakeCartItem{{productID: 1, quantity: 1}}

	svc := NewService(fs)
	o, err := svc.Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Update(context.Background(), 99, o.OrderNumber, StaffUpdate{PaymentStatus: PaymentPaid}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	if fs.productStock[1] != 4 {
		t.Errorf("stock = %d, want 4 after exactly one deduction", fs.productStock[1])
	}
	if len(fs.moves) != 1 {
		t.Errorf("stock moves = %d, want 1", len(fs.moves))
	}
}

func TestUpdate_StatusAndPaymentApplyIndependently(t *testing.T) {
	fs := newFakeStore()
	o := paidOrderFixture(t, fs)

	updated, err := NewService(fs).Update(context.Background(), 99, o.OrderNumber, StaffUpdate{
		Status:        StatusShipped,
		PaymentMethod: "bank_transfer",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusShipped || updated.ShippedAt == nil {
		t.Error("shipped transition not applied")
	}
	if updated.PaymentMethod != "bank_transfer" {
		t.Errorf("payment_method = %q", updated.PaymentMethod)
	}
	if updated.PaymentStatus != PaymentPaid {
		t.Errorf("payment_status changed to %q", updated.PaymentStatus)
	}
}

func TestCancel_RestoresStockOnce(t *testing.T) {
	fs := newFakeStore()
	o := paidOrderFixture(t, fs)
	svc := NewService(fs)

	if fs.productStock[1] != 8 {
		t.Fatalf("stock after checkout = %d, want 8", fs.productStock[1])
	}

	cancelled, err := svc.Cancel(context.Background(), 7, o.OrderNumber, "changed my mind", false)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q", cancelled.Status)
	}
	if fs.productStock[1] != 10 {
		t.Errorf("stock = %d, want 10 after restore", fs.productStock[1])
	}

	if _, err := svc.Cancel(context.Background(), 7, o.OrderNumber, "again", false); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second cancel: %v, want ErrAlreadyCancelled", err)
	}
	if fs.productStock[1] != 10 {
		t.Errorf("stock = %d after failed second cancel", fs.productStock[1])
	}
}

func TestCancel_OtherUsersOrderNotFound(t *testing.T) {
	fs := newFakeStore()
	o := paidOrderFixture(t, fs)

	_, err := NewService(fs).Cancel(context.Background(), 8, o.OrderNumber, "", false)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("cancel as another user: %v, want ErrOrderNotFound", err)
	}
}

func TestReceivedBack_RestoresShippedOrderOnce(t *testing.T) {
	fs := newFakeStore()
	o := paidOrderFixture(t, fs)
	svc := NewService(fs)

	if _, err := svc.Update(context.Background(), 99, o.OrderNumber, StaffUpdate{Status: StatusShipped}); err != nil {
		t.Fatalf("ship: %v", err)
	}

	received, err := svc.ReceivedBack(context.Background(), 99, o.OrderNumber)
	if err != nil {
		t.Fatalf("received-back: %v", err)
	}
	if !received.IsReceivedBack {
		t.Error("is_received_back not set")
	}
	if fs.productStock[1] != 10 {
		t.Errorf("stock = %d, want 10 after restore", fs.productStock[1])
	}

	if _, err := svc.ReceivedBack(context.Background(), 99, o.OrderNumber); !errors.Is(err, ErrAlreadyReceived) {
		t.Fatalf("second received-back: %v, want ErrAlreadyReceived", err)
	}
	if fs.productStock[1] != 10 {
		t.Errorf("stock = %d after failed second received-back", fs.productStock[1])
	}
}

// Staff cancelling a shipped order that already came back must not restore
// stock again.
func TestStaffCancelAfterReceivedBack_NoDoubleRestore(t *testing.T) {
	fs := newFakeStore()
	o := paidOrderFixture(t, fs)
	svc := NewService(fs)

	if _, err := svc.Update(context.Background(), 99, o.OrderNumber, StaffUpdate{Status: StatusShipped}); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if _, err := svc.ReceivedBack(context.Background(), 99, o.OrderNumber); err != nil {
		t.Fatalf("received-back: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), 99, o.OrderNumber, "refund", true); err != nil {
		t.Fatalf("staff cancel: %v", err)
	}

	if fs.productStock[1] != 10 {
		t.Errorf("stock = %d, want 10 (restored exactly once)", fs.productStock[1])
	}
	restores := 0
	for _, m := range fs.moves {
		if m.delta > 0 {
			restores++
		}
	}
	if restores != 1 {
		t.Errorf("restore moves = %d, want 1", restores)
	}
}

func TestCreate_PaymentMethods(t *testing.T) {
	svc := NewService(newFakeStore())
	_, err := svc.Create(context.Background(), 7, CreateRequest{
		Shipping:      shippingFixture(),
		PaymentMethod: "bitcoin",
	})
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("got %v, want ErrInvalidPaymentMethod", err)
	}

	// Every accepted method, plus omitted entirely.
	for _, method := range []string{"cash", "card", "bank_transfer", "eft", "in_store", ""} {
		fs := newFakeStore()
		seedCart(fs, 7)
		o, err := NewService(fs).Create(context.Background(), 7, CreateRequest{
			Shipping:      shippingFixture(),
			PaymentMethod: method,
		})
		if err != nil {
			t.Fatalf("method %q: %v", method, err)
		}
		if o.PaymentMethod != method {
			t.Errorf("method %q stored as %q", method, o.PaymentMethod)
		}
	}
}
