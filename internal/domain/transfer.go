package domain

import "errors"

var (
	// ErrInvalidAmount indicates an amount that cannot be parsed as a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates a zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrSameAccountTransfer indicates a transfer where source and destination coincide.
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// TransferTxResult is the result of the transfer transaction.
// Both accounts carry their post-transfer balances.
type TransferTxResult struct {
	FromAccount Account `json:"from_account"`
	ToAccount   Account `json:"to_account"`
}
