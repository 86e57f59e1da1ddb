package repositories

import (
	"gorm.io/gorm"
)

// Store bundles the repositories that can take part in one unit of work.
type Store interface {
	Products() ProductRepository
	Carts() CartRepository
	Transactions() TransactionRepository
}

// UnitOfWork runs a function against a Store whose writes commit or roll back
// as a whole. Returning an error from fn aborts every write made through the
// store it received.
type UnitOfWork interface {
	Do(fn func(store Store) error) error
}

// GORMStore is the GORM implementation of Store and UnitOfWork. The zero-value
// repositories it hands out are bound to its *gorm.DB, so a store built from a
// transaction handle scopes every repository call to that transaction.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db: db,
	}
}

// Products returns a ProductRepository bound to this store's handle.
func (s *GORMStore) Products() ProductRepository {
	return NewGORMProductRepository(s.db)
}

// Carts returns a CartRepository bound to this store's handle.
func (s *GORMStore) Carts() CartRepository {
	return NewGORMCartRepository(s.db)
}

// Transactions returns a TransactionRepository bound to this store's handle.
func (s *GORMStore) Transactions() TransactionRepository {
	return NewGORMTransactionRepository(s.db)
}

// Do executes fn inside a database transaction. The store passed to fn is
// bound to the transaction handle; an error return rolls everything back.
func (s *GORMStore) Do(fn func(store Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
