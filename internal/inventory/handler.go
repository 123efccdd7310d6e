package inventory

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/htetaung/storefront-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterStaffRoutes mounts the stock ledger endpoints. All of them
// require a staff account.
func (h *Handler) RegisterStaffRoutes(app *fiber.App) {
	staff := app.Group("/inventory", user.RequireStaff)
	staff.Post("/stock/adjust/", h.AdjustStock)
	staff.Get("/stock/history/", h.StockHistory)
	staff.Get("/stats/", h.InventoryStats)
}

type adjustStockRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Type      string `json:"adjustment_type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func (h *Handler) AdjustStock(c *fiber.Ctx) error {
	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ProductID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_id is required"})
	}

	actorID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	target := ProductTarget(req.ProductID)
	if req.VariantID != nil {
		target = VariantTarget(req.ProductID, *req.VariantID)
	}

	adj, err := h.service.Adjust(c.Context(), AdjustRequest{
		Target:   target,
		Quantity: req.Quantity,
		Type:     req.Type,
		Reason:   req.Reason,
		ActorID:  actorID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrZeroQuantity):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrVariantNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to adjust stock"})
	}

	return c.Status(fiber.StatusCreated).JSON(adj)
}

func (h *Handler) StockHistory(c *fiber.Ctx) error {
	filter := HistoryFilter{
		ProductID: int64(c.QueryInt("product_id")),
		Limit:     c.QueryInt("limit", 100),
	}
	if t := c.Query("type"); t != "" {
		filter.Types = strings.Split(t, ",")
	}

	history, err := h.service.History(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch stock history"})
	}
	return c.JSON(fiber.Map{"adjustments": history, "count": len(history)})
}

func (h *Handler) InventoryStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch inventory stats"})
	}
	return c.JSON(stats)
}
