package catalog

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/htetaung/storefront-backend/internal/user"
)

// Handler exposes public catalog browsing plus the staff management
// endpoints used to maintain products and variants.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/products/", h.listProducts)
	app.Get("/products/:slug/", h.getProduct)
}

func (h *Handler) RegisterStaffRoutes(app *fiber.App) {
	app.Post("/inventory/products/", user.RequireStaff, h.createProduct)
	app.Patch("/inventory/products/:slug/", user.RequireStaff, h.updateProduct)
	app.Post("/inventory/variants/", user.RequireStaff, h.createVariant)
	app.Patch("/inventory/variants/:id<[0-9]+>/", user.RequireStaff, h.updateVariant)
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.Context(), true)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if err == ErrProductNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(p)
}

type createProductRequest struct {
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Stock       int             `json:"stock"`
	IsActive    *bool           `json:"is_active"`
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(createProductRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if payload.Name == "" || payload.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and slug are required"})
	}

	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	created, err := h.service.CreateProduct(c.Context(), Product{
		Category:    payload.Category,
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
		BasePrice:   payload.BasePrice,
		Stock:       payload.Stock,
		IsActive:    active,
	})
	if err != nil {
		if err == ErrDuplicateSlug {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "slug already in use"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	IsActive    *bool            `json:"is_active"`
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	payload := new(updateProductRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := h.service.UpdateProduct(c.Context(), c.Params("slug"), ProductUpdate{
		Name:        payload.Name,
		Category:    payload.Category,
		Description: payload.Description,
		BasePrice:   payload.BasePrice,
		IsActive:    payload.IsActive,
	})
	if err != nil {
		if err == ErrProductNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated)
}

type createVariantRequest struct {
	ProductID     int64           `json:"product_id"`
	SKU           string          `json:"sku"`
	Color         string          `json:"color"`
	Size          string          `json:"size"`
	PriceModifier decimal.Decimal `json:"price_modifier"`
	Stock         int             `json:"stock"`
	IsActive      *bool           `json:"is_active"`
}

func (h *Handler) createVariant(c *fiber.Ctx) error {
	payload := new(createVariantRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if payload.ProductID <= 0 || payload.SKU == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_id and sku are required"})
	}

	if _, err := h.service.GetByID(c.Context(), payload.ProductID); err != nil {
		if err == ErrProductNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	created, err := h.service.CreateVariant(c.Context(), Variant{
		ProductID:     payload.ProductID,
		SKU:           payload.SKU,
		Color:         payload.Color,
		Size:          payload.Size,
		PriceModifier: payload.PriceModifier,
		Stock:         payload.Stock,
		IsActive:      active,
	})
	if err != nil {
		if err == ErrDuplicateSKU {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "sku or color/size combination already in use"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

type updateVariantRequest struct {
	Color         *string          `json:"color"`
	Size          *string          `json:"size"`
	PriceModifier *decimal.Decimal `json:"price_modifier"`
	IsActive      *bool            `json:"is_active"`
}

func (h *Handler) updateVariant(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid variant id"})
	}

	payload := new(updateVariantRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := h.service.UpdateVariant(c.Context(), id, VariantUpdate{
		Color:         payload.Color,
		Size:          payload.Size,
		PriceModifier: payload.PriceModifier,
		IsActive:      payload.IsActive,
	})
	if err != nil {
		switch err {
		case ErrVariantNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "variant not found"})
		case ErrDuplicateSKU:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "color/size combination already in use"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(updated)
}
