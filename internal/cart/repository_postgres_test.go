package cart

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func expectLoad(mock sqlmock.Sqlmock, cartID int64, itemRows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT updated_at FROM carts").
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectQuery("FROM cart_items ci").
		WithArgs(cartID).
		WillReturnRows(itemRows)
}

func itemColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "product_id", "variant_id", "quantity",
		"name", "slug", "base_price",
		"color", "size", "price_modifier",
	})
}

func TestAddItem_ExistingLineIncrements(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs(2, int64(3), int64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expectLoad(mock, 3, itemColumns().
		AddRow(int64(10), int64(1), nil, 5, "Canvas Tote", "canvas-tote", "20.00", nil, nil, nil))

	c, err := repo.AddItem(context.Background(), 7, 1, nil, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 5 {
		t.Fatalf("unexpected cart: %+v", c.Items)
	}
	if !c.Items[0].Subtotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("subtotal = %s, want 100.00", c.Items[0].Subtotal)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddItem_NewLineInserted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO carts").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs(1, int64(3), int64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(int64(3), int64(1), nil, 1).
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expectLoad(mock, 3, itemColumns().
		AddRow(int64(10), int64(1), nil, 1, "Canvas Tote", "canvas-tote", "20.00", nil, nil, nil))

	c, err := repo.AddItem(context.Background(), 7, 1, nil, 1)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 1 {
		t.Fatalf("unexpected cart: %+v", c.Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLoad_VariantPriceIncludesModifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	variantID := int64(10)
	mock.ExpectQuery("INSERT INTO carts").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	expectLoad(mock, 3, itemColumns().
		AddRow(int64(11), int64(1), variantID, 2, "Canvas Tote", "canvas-tote", "20.00", "Red", "M", "2.00"))

	c, err := repo.GetOrCreate(context.Background(), 7)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	item := c.Items[0]
	if !item.Price.Equal(decimal.RequireFromString("22.00")) {
		t.Errorf("price = %s, want base + modifier = 22.00", item.Price)
	}
	if item.Color != "Red" || item.Size != "M" {
		t.Errorf("variant fields not mapped: %+v", item)
	}
	if !c.Total().Equal(decimal.RequireFromString("44.00")) {
		t.Errorf("total = %s, want 44.00", c.Total())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateItem_MissingLine(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE cart_items ci SET quantity").
		WithArgs(int64(99), int64(7), 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.UpdateItem(context.Background(), 7, 99, 2); err != ErrItemNotFound {
		t.Fatalf("update missing item: %v, want ErrItemNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
