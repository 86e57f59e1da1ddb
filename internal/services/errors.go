package services

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when a cart-sourced checkout finds no lines.
var ErrEmptyCart = errors.New("cart is empty")

// InvalidStateError is returned when a cancellation targets a transaction
// whose status is not pending.
type InvalidStateError struct {
	CurrentStatus string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("only pending transactions can be canceled (current status: %s)", e.CurrentStatus)
}
