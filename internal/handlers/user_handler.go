package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/billiampalad/UMKM-sub000/internal/middleware"
	"github.com/billiampalad/UMKM-sub000/internal/services"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Get("/", middleware.AdminOnly(), h.HandleGetUsers)
}

// HandleGetMe returns the authenticated caller's profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Error getting user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve user",
			"error":   err.Error(),
		})
	}

	user.Password = ""
	return c.JSON(user)
}

// HandleGetUsers lists all users (admin only).
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers()
	if err != nil {
		log.Printf("Error getting users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve users",
			"error":   err.Error(),
		})
	}

	for i := range users {
		users[i].Password = ""
	}
	return c.JSON(users)
}
