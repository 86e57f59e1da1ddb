package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/billiampalad/UMKM-sub000/internal/models"
)

// GORMTransactionRepository is a GORM implementation of TransactionRepository.
type GORMTransactionRepository struct {
	db *gorm.DB
}

// NewGORMTransactionRepository creates a new instance of GORMTransactionRepository.
func NewGORMTransactionRepository(db *gorm.DB) *GORMTransactionRepository {
	return &GORMTransactionRepository{
		db: db,
	}
}

// Create inserts the transaction and its items in one go. GORM cascades the
// Items association, so items land in the same statement batch.
func (r *GORMTransactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction with its items.
func (r *GORMTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Preload("Items").First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TransactionNotFoundError{TransactionID: id}
		}
		return nil, fmt.Errorf("failed to get transaction by ID %d: %w", id, err)
	}
	return &transaction, nil
}

// GetAll retrieves every transaction, newest first.
func (r *GORMTransactionRepository) GetAll() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Preload("Items").Order("id DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get all transactions: %w", err)
	}
	return transactions, nil
}

// GetByUser retrieves all transactions owned by a user, newest first.
func (r *GORMTransactionRepository) GetByUser(userID uint) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Preload("Items").Where("user_id = ?", userID).Order("id DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	return transactions, nil
}

// UpdateStatus sets the status of a transaction.
func (r *GORMTransactionRepository) UpdateStatus(id uint, status string) error {
	res := r.db.Model(&models.Transaction{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for transaction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &TransactionNotFoundError{TransactionID: id}
	}
	return nil
}
