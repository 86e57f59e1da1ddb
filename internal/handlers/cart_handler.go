package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/billiampalad/UMKM-sub000/internal/middleware"
	"github.com/billiampalad/UMKM-sub000/internal/repositories"
	"github.com/billiampalad/UMKM-sub000/internal/services"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// CartItemRequest is the body for adding or updating a cart line.
type CartItemRequest struct {
	ProductID uint `json:"id_product" validate:"required"`
	Quantity  int  `json:"jumlah" validate:"required,gte=1"`
}

// HandleGetCart returns the caller's cart lines with line subtotals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	items, err := h.service.GetCart(userID)
	if err != nil {
		log.Printf("Error getting cart for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}

	var total float64
	lines := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		line := fiber.Map{
			"id_product": item.ProductID,
			"jumlah":     item.Quantity,
		}
		if item.Product != nil {
			subtotal := float64(item.Quantity) * item.Product.Price
			line["name"] = item.Product.Name
			line["harga"] = item.Product.Price
			line["subtotal"] = subtotal
			total += subtotal
		}
		lines = append(lines, line)
	}

	return c.JSON(fiber.Map{
		"items": lines,
		"total": total,
	})
}

// HandleAddItem adds a product to the cart, merging quantities when the line
// already exists.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart item body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	item, err := h.service.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		var notFound *repositories.ProductNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": notFound.Error(),
			})
		}
		log.Printf("Error adding cart item for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem replaces the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	productID, err := c.ParamsInt("productId")
	if err != nil || productID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product id",
		})
	}

	var req struct {
		Quantity int `json:"jumlah" validate:"required,gte=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	if err := h.service.UpdateItem(userID, uint(productID), req.Quantity); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Error updating cart item for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart item",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cart item updated",
	})
}

// HandleRemoveItem deletes a single cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	productID, err := c.ParamsInt("productId")
	if err != nil || productID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product id",
		})
	}

	if err := h.service.RemoveItem(userID, uint(productID)); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Error removing cart item for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove cart item",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cart item removed",
	})
}

// HandleClearCart empties the caller's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	removed, err := h.service.ClearCart(userID)
	if err != nil {
		log.Printf("Error clearing cart for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":       "Cart cleared",
		"items_removed": removed,
	})
}
