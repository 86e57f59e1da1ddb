package repositories

import (
	"github.com/billiampalad/UMKM-sub000/internal/models"
)

// CartRepository defines the interface for cart line data access.
type CartRepository interface {
	// GetByUser returns all cart lines for a user with product details loaded.
	GetByUser(userID uint) ([]models.CartItem, error)
	// GetItem returns the (user, product) line, or nil when absent.
	GetItem(userID, productID uint) (*models.CartItem, error)
	Create(item *models.CartItem) error
	UpdateQuantity(userID, productID uint, quantity int) error
	Remove(userID, productID uint) error
	// ClearForUser deletes every cart line for the user and returns how many
	// were removed.
	ClearForUser(userID uint) (int64, error)
}
