package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/billiampalad/UMKM-sub000/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows affected
		// for an update, so we check RowsAffected.
		return &ProductNotFoundError{ProductID: product.ID}
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &ProductNotFoundError{ProductID: id}
	}
	return nil
}

// DecrementStock performs the conditional stock decrement. The WHERE guard is
// the authoritative check against going negative: zero rows affected means the
// stock observed by an earlier read is gone, and the caller must roll back.
func (r *GORMProductRepository) DecrementStock(id uint, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Re-read to tell "product gone" from "stock drained" and to report
		// how much is actually left.
		product, err := r.GetByID(id)
		if err != nil {
			return err
		}
		return &InsufficientStockError{ProductID: id, Available: product.Stock, Requested: qty}
	}
	return nil
}

// IncrementStock restores qty units of stock, the inverse of DecrementStock.
func (r *GORMProductRepository) IncrementStock(id uint, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock for product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &ProductNotFoundError{ProductID: id}
	}
	return nil
}
