package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/billiampalad/UMKM-sub000/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUser retrieves all cart lines for a user, product details included.
func (r *GORMCartRepository) GetByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for user %d: %w", userID, err)
	}
	return items, nil
}

// GetItem retrieves the cart line for a (user, product) pair, nil when absent.
func (r *GORMCartRepository) GetItem(userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart item for user %d product %d: %w", userID, productID, err)
	}
	return &item, nil
}

// Create adds a new cart line.
func (r *GORMCartRepository) Create(item *models.CartItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing cart line.
func (r *GORMCartRepository) UpdateQuantity(userID, productID uint, quantity int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %d not found", productID)
	}
	return nil
}

// Remove deletes a single cart line. Cart lines are disposable, so deletes
// are hard deletes; a soft-deleted row would collide with the unique
// (user, product) index on re-add.
func (r *GORMCartRepository) Remove(userID, productID uint) error {
	res := r.db.Unscoped().Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %d not found", productID)
	}
	return nil
}

// ClearForUser deletes all cart lines for the user.
func (r *GORMCartRepository) ClearForUser(userID uint) (int64, error) {
	res := r.db.Unscoped().Where("user_id = ?", userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart for user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
