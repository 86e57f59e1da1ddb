package services

import (
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/billiampalad/UMKM-sub000/internal/models"
	"github.com/billiampalad/UMKM-sub000/internal/repositories"
	"github.com/billiampalad/UMKM-sub000/pkg/rabbitmq"
)

// ErrInvalidPaymentMethod is returned when the payment method is missing or
// outside the 2-50 character policy.
var ErrInvalidPaymentMethod = errors.New("payment method must be between 2 and 50 characters")

// CheckoutItemInput is one explicitly supplied line for a direct checkout.
type CheckoutItemInput struct {
	ProductID uint `json:"id_product" validate:"required"`
	Quantity  int  `json:"jumlah" validate:"required,gte=1"`
}

// TransactionService converts purchase intent (a cart or an explicit item
// list) into durable transactions, and reverses pending ones. Every checkout
// and cancellation runs inside a single unit of work: no partial transaction
// rows, no partial stock changes.
type TransactionService struct {
	store    repositories.Store
	uow      repositories.UnitOfWork
	mqClient *rabbitmq.Client
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store repositories.Store, uow repositories.UnitOfWork, mqClient *rabbitmq.Client) *TransactionService {
	return &TransactionService{
		store:    store,
		uow:      uow,
		mqClient: mqClient,
	}
}

// Checkout materializes the user's cart into a transaction: per-line stock
// validation, price snapshot, stock decrement, and cart clearing, all inside
// one unit of work. An empty cart fails with ErrEmptyCart before any write.
func (s *TransactionService) Checkout(userID uint, paymentMethod string) (*models.Transaction, error) {
	if err := validatePaymentMethod(paymentMethod); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := s.uow.Do(func(store repositories.Store) error {
		cartItems, err := store.Carts().GetByUser(userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		source := make([]CheckoutItemInput, 0, len(cartItems))
		for _, item := range cartItems {
			source = append(source, CheckoutItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		created, err = s.createTransaction(store, userID, paymentMethod, source)
		if err != nil {
			return err
		}

		if _, err := store.Carts().ClearForUser(userID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("transaction.completed", created)
	return created, nil
}

// DirectCheckout is the ad-hoc variant: the line items come from the request
// instead of the cart, and no cart clearing happens. Validation and the
// all-or-nothing commit discipline are identical to Checkout.
func (s *TransactionService) DirectCheckout(userID uint, paymentMethod string, items []CheckoutItemInput) (*models.Transaction, error) {
	if err := validatePaymentMethod(paymentMethod); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var created *models.Transaction
	err := s.uow.Do(func(store repositories.Store) error {
		var err error
		created, err = s.createTransaction(store, userID, paymentMethod, items)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("transaction.completed", created)
	return created, nil
}

// createTransaction runs the shared checkout core against a store that is
// already scoped to a unit of work. Prices are read at this moment and frozen
// into the items; the total is always computed here, never taken from the
// client. The conditional decrement re-validates stock at write time, so a
// concurrent checkout that drained the stock after our pre-check still aborts
// the whole operation.
func (s *TransactionService) createTransaction(store repositories.Store, userID uint, paymentMethod string, items []CheckoutItemInput) (*models.Transaction, error) {
	var total float64
	lines := make([]models.TransactionItem, 0, len(items))

	for _, item := range items {
		product, err := store.Products().GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < item.Quantity {
			return nil, &repositories.InsufficientStockError{
				ProductID: product.ID,
				Available: product.Stock,
				Requested: item.Quantity,
			}
		}

		subtotal := float64(item.Quantity) * product.Price
		lines = append(lines, models.TransactionItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price, // Unit price frozen at purchase time
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	transaction := &models.Transaction{
		Invoice:       uuid.New().String(),
		UserID:        userID,
		Total:         total,
		PaymentMethod: paymentMethod,
		Status:        models.StatusCompleted,
		Items:         lines,
	}
	if err := store.Transactions().Create(transaction); err != nil {
		return nil, err
	}

	for _, line := range lines {
		if err := store.Products().DecrementStock(line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

// Cancel reverses a pending transaction: every item's stock is restored
// exactly once and the status moves to cancelled. A non-pending status fails
// with *InvalidStateError, which is what makes a second cancel safe. Non-admin
// callers only reach their own transactions; everything else reads as not
// found so existence is not leaked.
func (s *TransactionService) Cancel(transactionID, callerUserID uint, isAdmin bool) (int, error) {
	var (
		restored  int
		cancelled *models.Transaction
	)
	err := s.uow.Do(func(store repositories.Store) error {
		transaction, err := store.Transactions().GetByID(transactionID)
		if err != nil {
			return err
		}
		if !isAdmin && transaction.UserID != callerUserID {
			return &repositories.TransactionNotFoundError{TransactionID: transactionID}
		}
		if transaction.Status != models.StatusPending {
			return &InvalidStateError{CurrentStatus: transaction.Status}
		}

		for _, item := range transaction.Items {
			if err := store.Products().IncrementStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := store.Transactions().UpdateStatus(transactionID, models.StatusCancelled); err != nil {
			return err
		}

		restored = len(transaction.Items)
		transaction.Status = models.StatusCancelled
		cancelled = transaction
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publishEvent("transaction.cancelled", cancelled)
	return restored, nil
}

// GetTransactionByID retrieves a single transaction, owner or admin only.
func (s *TransactionService) GetTransactionByID(transactionID, callerUserID uint, isAdmin bool) (*models.Transaction, error) {
	transaction, err := s.store.Transactions().GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && transaction.UserID != callerUserID {
		return nil, &repositories.TransactionNotFoundError{TransactionID: transactionID}
	}
	return transaction, nil
}

// ListTransactions returns the caller's transaction history; admins see all.
func (s *TransactionService) ListTransactions(callerUserID uint, isAdmin bool) ([]models.Transaction, error) {
	if isAdmin {
		return s.store.Transactions().GetAll()
	}
	return s.store.Transactions().GetByUser(callerUserID)
}

// publishEvent emits a transaction lifecycle event. Publishing is best-effort:
// the database commit already happened, so a broker failure is only logged.
func (s *TransactionService) publishEvent(event string, transaction *models.Transaction) {
	if s.mqClient == nil {
		return
	}
	payload := map[string]interface{}{
		"id_order": transaction.ID,
		"invoice":  transaction.Invoice,
		"user_id":  transaction.UserID,
		"total":    transaction.Total,
		"status":   transaction.Status,
	}
	if err := s.mqClient.PublishTransactionEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for transaction %d: %v", event, transaction.ID, err)
	}
}

func validatePaymentMethod(paymentMethod string) error {
	if l := len(paymentMethod); l < 2 || l > 50 {
		return ErrInvalidPaymentMethod
	}
	return nil
}
