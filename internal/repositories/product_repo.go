package repositories

import (
	"github.com/billiampalad/UMKM-sub000/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	// DecrementStock subtracts qty from the product's stock with a conditional
	// update that refuses to take it below zero. A failed condition is reported
	// as *InsufficientStockError carrying the stock still available.
	DecrementStock(id uint, qty int) error
	// IncrementStock adds qty back to the product's stock.
	IncrementStock(id uint, qty int) error
}
