package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/billiampalad/UMKM-sub000/internal/middleware"
	"github.com/billiampalad/UMKM-sub000/internal/models"
	"github.com/billiampalad/UMKM-sub000/internal/repositories"
	"github.com/billiampalad/UMKM-sub000/internal/services"
)

// TransactionHandler handles HTTP requests for checkout, cancellation, and
// transaction history.
type TransactionHandler struct {
	service  *services.TransactionService
	validate *validator.Validate
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the transaction routes with the Fiber app.
func (h *TransactionHandler) RegisterRoutes(router fiber.Router) {
	transactionRoutes := router.Group("/transactions")
	transactionRoutes.Get("/", h.HandleGetTransactions)
	transactionRoutes.Get("/:id", h.HandleGetTransactionByID)
	transactionRoutes.Post("/checkout", h.HandleCheckout)
	transactionRoutes.Post("/direct", h.HandleDirectCheckout)
	transactionRoutes.Patch("/:id/cancel", h.HandleCancel)
}

// CheckoutRequest is the body for a cart checkout.
type CheckoutRequest struct {
	PaymentMethod string `json:"metode_pembayaran" validate:"required,min=2,max=50"`
}

// DirectCheckoutRequest is the body for an ad-hoc checkout with explicit items.
type DirectCheckoutRequest struct {
	PaymentMethod string                       `json:"metode_pembayaran" validate:"required,min=2,max=50"`
	Items         []services.CheckoutItemInput `json:"items" validate:"required,min=1,dive"`
}

// HandleCheckout converts the caller's cart into a transaction.
func (h *TransactionHandler) HandleCheckout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	transaction, err := h.service.Checkout(userID, req.PaymentMethod)
	if err != nil {
		return checkoutErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(transactionResponse(transaction))
}

// HandleDirectCheckout creates a transaction from explicitly supplied items,
// without touching the cart.
func (h *TransactionHandler) HandleDirectCheckout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req DirectCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing direct checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	transaction, err := h.service.DirectCheckout(userID, req.PaymentMethod, req.Items)
	if err != nil {
		return checkoutErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(transactionResponse(transaction))
}

// HandleCancel reverses a pending transaction, restoring stock.
func (h *TransactionHandler) HandleCancel(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	isAdmin := middleware.IsAdmin(c)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid transaction id",
		})
	}

	restored, err := h.service.Cancel(uint(id), userID, isAdmin)
	if err != nil {
		var invalidState *services.InvalidStateError
		if errors.As(err, &invalidState) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Only pending transactions can be canceled",
			})
		}
		var notFound *repositories.TransactionNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": notFound.Error(),
			})
		}
		log.Printf("Error canceling transaction %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not cancel transaction",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"id_order":       uint(id),
		"items_restored": restored,
	})
}

// HandleGetTransactions lists the caller's transactions; admins see all.
func (h *TransactionHandler) HandleGetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.ListTransactions(middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		log.Printf("Error getting transactions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve transactions",
			"error":   err.Error(),
		})
	}
	return c.JSON(transactions)
}

// HandleGetTransactionByID retrieves a single transaction with its items.
func (h *TransactionHandler) HandleGetTransactionByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid transaction id",
		})
	}

	transaction, err := h.service.GetTransactionByID(uint(id), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		var notFound *repositories.TransactionNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": notFound.Error(),
			})
		}
		log.Printf("Error getting transaction %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve transaction",
			"error":   err.Error(),
		})
	}
	return c.JSON(transaction)
}

// transactionResponse is the success shape shared by both checkout variants.
func transactionResponse(t *models.Transaction) fiber.Map {
	return fiber.Map{
		"id_order":          t.ID,
		"invoice":           t.Invoice,
		"total":             t.Total,
		"metode_pembayaran": t.PaymentMethod,
		"status":            t.Status,
		"items_count":       len(t.Items),
	}
}

// checkoutErrorResponse maps checkout failures onto the wire contract: stock
// failures carry the available/requested detail, unknown products are 404,
// and an empty cart is a plain 400.
func checkoutErrorResponse(c *fiber.Ctx, err error) error {
	var insufficient *repositories.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":            insufficient.Error(),
			"id_product":         insufficient.ProductID,
			"available_stock":    insufficient.Available,
			"requested_quantity": insufficient.Requested,
		})
	}
	var notFound *repositories.ProductNotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFound.Error(),
		})
	}
	if errors.Is(err, services.ErrEmptyCart) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cart is empty",
		})
	}
	if errors.Is(err, services.ErrInvalidPaymentMethod) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	log.Printf("Checkout failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not complete checkout",
		"error":   err.Error(),
	})
}
