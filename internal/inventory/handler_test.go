package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func fakeAuth(userID int64, staff bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":  float64(userID),
			"is_staff": staff,
		})
		c.Locals("user", tok)
		return c.Next()
	}
}

func setupApp(repo *InMemoryRepository, staff bool) *fiber.App {
	app := fiber.New()
	app.Use(fakeAuth(9, staff))
	NewHandler(NewService(repo)).RegisterStaffRoutes(app)
	return app
}

func TestAdjustStock_RecordsLedgerEntry(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedProduct(1, 10, true)
	app := setupApp(repo, true)

	body, _ := json.Marshal(map[string]any{
		"product_id":      1,
		"adjustment_type": KindAdd,
		"quantity":        5,
		"reason":          "restock delivery",
	})
	req := httptest.NewRequest("POST", "/inventory/stock/adjust/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var adj Adjustment
	if err := json.NewDecoder(resp.Body).Decode(&adj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if adj.PreviousStock != 10 || adj.NewStock != 15 {
		t.Errorf("stock snapshot = %d -> %d, want 10 -> 15", adj.PreviousStock, adj.NewStock)
	}
	if adj.AdjustedBy != 9 {
		t.Errorf("adjusted_by = %d, want the acting staff user", adj.AdjustedBy)
	}
	if got := repo.ProductStock(1); got != 15 {
		t.Errorf("stock = %d, want 15", got)
	}
}

func TestAdjustStock_InvalidKindRejected(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedProduct(1, 10, true)
	app := setupApp(repo, true)

	body, _ := json.Marshal(map[string]any{
		"product_id":      1,
		"adjustment_type": "steal",
		"quantity":        5,
	})
	req := httptest.NewRequest("POST", "/inventory/stock/adjust/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStaffRoutes_ForbiddenForNonStaff(t *testing.T) {
	app := setupApp(NewInMemoryRepository(), false)

	for _, route := range []struct{ method, path string }{
		{"POST", "/inventory/stock/adjust/"},
		{"GET", "/inventory/stock/history/"},
		{"GET", "/inventory/stats/"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", route.method, route.path, err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Errorf("%s %s: status = %d, want 403", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestStockHistory_FiltersByType(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.SeedProduct(1, 10, true)
	app := setupApp(repo, true)

	for _, kind := range []string{KindAdd, KindRemove, KindAdd} {
		qty := 1
		if kind == KindRemove {
			qty = -1
		}
		if _, err := repo.Adjust(context.Background(), AdjustRequest{Target: ProductTarget(1), Quantity: qty, Type: kind, ActorID: 9}); err != nil {
			t.Fatalf("seed adjust: %v", err)
		}
	}

	req := httptest.NewRequest("GET", "/inventory/stock/history/?type=add", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		Count       int          `json:"count"`
		Adjustments []Adjustment `json:"adjustments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Count != 2 {
		t.Errorf("count = %d, want 2 add entries", got.Count)
	}
	for _, adj := range got.Adjustments {
		if adj.Type != KindAdd {
			t.Errorf("entry type = %q, want %q", adj.Type, KindAdd)
		}
	}
}
