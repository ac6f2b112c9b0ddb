// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/go-teller/teller/pkg/randompkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts bounds account-number generation retries on collision.
const maxNumberAttempts = 5

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	GetUser(ctx context.Context, id int32) (domain.User, error)
	CreateAccount(ctx context.Context, userID int32, number string) (domain.Account, error)
	DeleteAccount(ctx context.Context, userID int32, number string) error
	ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error)
	GetAccount(ctx context.Context, number string) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create creates an empty account for the given user, regenerating the
// account number on collision up to a bounded number of attempts.
func (s *Service) Create(ctx context.Context, userID int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return domain.Account{}, err
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := randompkg.AccountNumber(domain.AccountNumberPrefix, domain.AccountNumberLength)

		account, err := s.repo.CreateAccount(ctx, userID, number)
		if err == domain.ErrAccountNumberTaken {
			l.Warn().Str("number", number).Msg("account number collision")
			continue
		}

		return account, err
	}

	return domain.Account{}, errorspkg.ErrUnavailable
}

// Delete removes the user's account if its balance is zero.
func (s *Service) Delete(ctx context.Context, userID int32, number string) error {
	return s.repo.DeleteAccount(ctx, userID, number)
}

// List returns the accounts owned by the given user.
func (s *Service) List(ctx context.Context, userID int32) ([]domain.Account, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.repo.ListAccounts(ctx, userID)
}

// GetBalance returns the balance of the account with the given number.
func (s *Service) GetBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	account, err := s.repo.GetAccount(ctx, number)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return account.Balance, nil
}
