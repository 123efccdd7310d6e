package cart

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/htetaung/storefront-backend/internal/catalog"
	"github.com/htetaung/storefront-backend/internal/user"
)

// Handler delegates cart operations to the cart service.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/cart/", h.getCart)
	app.Post("/cart/add/", h.addToCart)
	app.Patch("/cart/items/:id<[0-9]+>/", h.updateItem)
	app.Delete("/cart/items/:id<[0-9]+>/remove/", h.removeItem)
	app.Delete("/cart/clear/", h.clearCart)
}

type addToCartRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cart, err := h.service.Get(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cartResponse(cart))
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(addToCartRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_id is required"})
	}
	if payload.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be at least 1"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cart, err := h.service.Add(c.Context(), userID, payload.ProductID, payload.VariantID, payload.Quantity)
	if err != nil {
		switch err {
		case catalog.ErrProductNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		case catalog.ErrVariantNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "variant not found"})
		case ErrVariantMismatch:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "variant does not belong to product"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(cartResponse(cart))
}

func (h *Handler) updateItem(c *fiber.Ctx) error {
	itemID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	payload := new(updateItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if payload.Quantity == nil || *payload.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be zero or greater"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cart, err := h.service.UpdateItem(c.Context(), userID, itemID, *payload.Quantity)
	if err != nil {
		if err == ErrItemNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cartResponse(cart))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	itemID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cart, err := h.service.RemoveItem(c.Context(), userID, itemID)
	if err != nil {
		if err == ErrItemNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cart item not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cartResponse(cart))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cart, err := h.service.Clear(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cartResponse(cart))
}

func cartResponse(c Cart) fiber.Map {
	return fiber.Map{
		"id":         c.ID,
		"items":      c.Items,
		"total":      c.Total(),
		"item_count": c.ItemCount(),
		"updated_at": c.UpdatedAt,
	}
}
