// Package transferservice manages business logic layer of balance mutations.
package transferservice

import (
	"context"

	"github.com/go-teller/teller/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by transfer service layer.
// Every method is a single atomic unit; sufficiency checks happen inside the
// store's lock scope, never on balances read beforehand.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (domain.TransferTxResult, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo Repo
}

// New returns transfer service struct to manage balance mutations.
func New(tr Repo) *Service {
	return &Service{repo: tr}
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, domain.ErrNonPositiveAmount
	}

	return amountDecimal, nil
}

// Deposit increases the account's balance and returns the updated account.
func (s *Service) Deposit(ctx context.Context, number, amount string) (domain.Account, error) {
	amountDecimal, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	return s.repo.Deposit(ctx, number, amountDecimal)
}

// Withdraw decreases the account's balance and returns the updated account.
func (s *Service) Withdraw(ctx context.Context, number, amount string) (domain.Account, error) {
	amountDecimal, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.Account{}, err
	}

	return s.repo.Withdraw(ctx, number, amountDecimal)
}

// Transfer moves amount between two distinct accounts as one atomic unit.
func (s *Service) Transfer(ctx context.Context, from, to, amount string) (domain.TransferTxResult, error) {
	if from == to {
		return domain.TransferTxResult{}, domain.ErrSameAccountTransfer
	}

	amountDecimal, err := parseAmount(ctx, amount)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	return s.repo.Transfer(ctx, from, to, amountDecimal)
}
