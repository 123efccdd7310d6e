package order

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStats_AllCountersScanned(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db)

	cols := []string{"count", "pending", "processing", "shipped", "delivered",
		"cancelled", "paid", "unpaid", "sum"}
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(20, 4, 3, 5, 6, 2, 11, 9, "1234.50"))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 20 || stats.PendingOrders != 4 || stats.ProcessingOrders != 3 ||
		stats.ShippedOrders != 5 || stats.DeliveredOrders != 6 || stats.CancelledOrders != 2 {
		t.Errorf("status counters wrong: %+v", stats)
	}
	if stats.PaidOrders != 11 || stats.UnpaidOrders != 9 {
		t.Errorf("payment counters wrong: %+v", stats)
	}
	if stats.TotalRevenue.StringFixed(2) != "1234.50" {
		t.Errorf("revenue = %s, want 1234.50", stats.TotalRevenue.StringFixed(2))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStats_NoPaidOrdersRevenueZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := NewPostgresStore(db)

	cols := []string{"count", "pending", "processing", "shipped", "delivered",
		"cancelled", "paid", "unpaid", "sum"}
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(2, 2, 0, 0, 0, 0, 0, 2, nil))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalRevenue.IsZero() {
		t.Errorf("revenue = %s, want 0", stats.TotalRevenue)
	}
}
