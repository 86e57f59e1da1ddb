package models

import "gorm.io/gorm"

// Transaction statuses. Checkout writes completed; cancellation only
// accepts pending and moves it to cancelled.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// TransactionItem is one product line within a transaction. Price is the
// unit price frozen at purchase time; the row is never updated afterwards.
type TransactionItem struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	TransactionID uint    `json:"id_order" gorm:"index;not null"`
	ProductID     uint    `json:"id_product" gorm:"index;not null"`
	Quantity      int     `json:"jumlah" gorm:"not null"`
	Price         float64 `json:"harga" gorm:"not null"` // Unit price at purchase time
	Subtotal      float64 `json:"subtotal" gorm:"not null"`
	gorm.Model
}

// Transaction is the durable record of a purchase, created atomically
// with its items. Total is always computed server-side.
type Transaction struct {
	ID            uint              `json:"id_order" gorm:"primaryKey"`
	Invoice       string            `json:"invoice" gorm:"uniqueIndex;type:varchar(36)"`
	UserID        uint              `json:"user_id" gorm:"index;not null"`
	Total         float64           `json:"total" gorm:"not null"`
	PaymentMethod string            `json:"metode_pembayaran" gorm:"type:varchar(50);not null"`
	Status        string            `json:"status" gorm:"type:varchar(20);not null"`
	Items         []TransactionItem `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
	gorm.Model
}
