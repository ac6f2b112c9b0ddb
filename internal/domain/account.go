package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountLimitExceeded indicates that the user already owns the maximum number of accounts.
	ErrAccountLimitExceeded = errors.New("account limit exceeded")
	// ErrAccountNumberTaken indicates that the generated account number is already assigned.
	ErrAccountNumberTaken = errors.New("account number already taken")
	// ErrNonZeroBalance indicates that the account cannot be deleted while it holds funds.
	ErrNonZeroBalance = errors.New("account balance must be zero")
)

const (
	// AccountNumberPrefix is the fixed prefix of every generated account number.
	AccountNumberPrefix = "4000"
	// AccountNumberLength is the total number of digits in an account number.
	AccountNumberLength = 16
	// MaxAccountsPerUser limits how many accounts a single user may own concurrently.
	MaxAccountsPerUser = 3
)

// Account holds the balance owned by a user under a sixteen-digit number.
type Account struct {
	Number    string          `json:"number"`
	UserID    int32           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}
