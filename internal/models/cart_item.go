package models

import "gorm.io/gorm"

// CartItem is a pending, mutable pre-purchase line owned by a user.
// One row per (user, product) pair; checkout deletes them wholesale.
type CartItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	UserID     uint     `json:"user_id" gorm:"uniqueIndex:idx_cart_user_product;not null"`
	ProductID  uint     `json:"id_product" gorm:"uniqueIndex:idx_cart_user_product;not null"`
	Quantity   int      `json:"jumlah" validate:"required,gte=1"`
	Product    *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
