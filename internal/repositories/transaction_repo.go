package repositories

import (
	"github.com/billiampalad/UMKM-sub000/internal/models"
)

// TransactionRepository defines the interface for transaction data access.
type TransactionRepository interface {
	// Create inserts the transaction together with its items.
	Create(transaction *models.Transaction) error
	// GetByID returns the transaction with its items loaded.
	GetByID(id uint) (*models.Transaction, error)
	GetAll() ([]models.Transaction, error)
	GetByUser(userID uint) ([]models.Transaction, error)
	UpdateStatus(id uint, status string) error
}
