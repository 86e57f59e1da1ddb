package repositories

import "fmt"

// ProductNotFoundError reports a reference to a product id that does not exist.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

// InsufficientStockError reports a requested quantity exceeding available stock.
// It is returned both by the pre-check read and by the conditional decrement
// when a concurrent writer drained the stock in between.
type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested: %d, available: %d)",
		e.ProductID, e.Requested, e.Available)
}

// TransactionNotFoundError reports a missing transaction. Handlers also use it
// for transactions the caller may not see, so existence is not leaked.
type TransactionNotFoundError struct {
	TransactionID uint
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction with ID %d not found", e.TransactionID)
}
