// Package filestore implements the account store on a line-oriented snapshot
// file: every record is loaded into memory when the store is opened and the
// whole file is rewritten before any mutation becomes visible.
package filestore

import (
	"context"
	"sort"
	"time"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store holds the in-memory table backed by the snapshot file.
// All operations serialize on one exclusive table lock, which is what makes
// every read-check-write sequence a single atomic scope.
type Store struct {
	path        string
	lockTimeout time.Duration

	sem chan struct{}

	users      map[int32]domain.User
	accounts   map[string]domain.Account
	nextUserID int32
}

// Open loads the snapshot at path into memory and returns the store.
// A missing file is treated as an empty ledger.
func Open(path string, lockTimeout time.Duration) (*Store, error) {
	s := &Store{
		path:        path,
		lockTimeout: lockTimeout,
		sem:         make(chan struct{}, 1),
		users:       make(map[int32]domain.User),
		accounts:    make(map[string]domain.Account),
		nextUserID:  1,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// acquire takes the table lock, giving up after the configured timeout so a
// caller can never queue behind a stuck lock holder indefinitely.
func (s *Store) acquire(ctx context.Context) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errorspkg.ErrUnavailable
	case <-timer.C:
		return errorspkg.ErrUnavailable
	}
}

func (s *Store) release() {
	<-s.sem
}

// CreateUser assigns the next user id and persists the new user.
func (s *Store) CreateUser(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	if err := s.acquire(ctx); err != nil {
		return domain.User{}, err
	}
	defer s.release()

	for _, u := range s.users {
		if u.Email == arg.Email {
			return domain.User{}, domain.ErrEmailAlreadyExists
		}
	}

	u := domain.User{
		ID:             s.nextUserID,
		FullName:       arg.FullName,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}

	s.users[u.ID] = u
	s.nextUserID++

	if err := s.persist(); err != nil {
		delete(s.users, u.ID)
		s.nextUserID--

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return u, nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id int32) (domain.User, error) {
	if err := s.acquire(ctx); err != nil {
		return domain.User{}, err
	}
	defer s.release()

	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return u, nil
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := s.acquire(ctx); err != nil {
		return domain.User{}, err
	}
	defer s.release()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, domain.ErrUserNotFound
}

// CreateAccount inserts an empty account under the given user.
// The ownership-limit check runs under the same lock as the insert so two
// concurrent creates cannot both slip past the limit.
func (s *Store) CreateAccount(ctx context.Context, userID int32, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if err := s.acquire(ctx); err != nil {
		return domain.Account{}, err
	}
	defer s.release()

	if _, ok := s.users[userID]; !ok {
		return domain.Account{}, domain.ErrUserNotFound
	}

	owned := 0
	for _, a := range s.accounts {
		if a.UserID == userID {
			owned++
		}
	}

	if owned >= domain.MaxAccountsPerUser {
		return domain.Account{}, domain.ErrAccountLimitExceeded
	}

	if _, ok := s.accounts[number]; ok {
		return domain.Account{}, domain.ErrAccountNumberTaken
	}

	a := domain.Account{
		Number:    number,
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}

	s.accounts[number] = a

	if err := s.persist(); err != nil {
		delete(s.accounts, number)

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

// DeleteAccount removes the account if it belongs to the user and holds no funds.
func (s *Store) DeleteAccount(ctx context.Context, userID int32, number string) error {
	l := zerolog.Ctx(ctx)

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	a, ok := s.accounts[number]
	if !ok || a.UserID != userID {
		return domain.ErrAccountNotFound
	}

	if !a.Balance.IsZero() {
		return domain.ErrNonZeroBalance
	}

	delete(s.accounts, number)

	if err := s.persist(); err != nil {
		s.accounts[number] = a

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	return nil
}

// ListAccounts returns the user's accounts ordered by number.
func (s *Store) ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	items := []domain.Account{}

	for _, a := range s.accounts {
		if a.UserID == userID {
			items = append(items, a)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })

	return items, nil
}

// GetAccount returns the account with the given number.
func (s *Store) GetAccount(ctx context.Context, number string) (domain.Account, error) {
	if err := s.acquire(ctx); err != nil {
		return domain.Account{}, err
	}
	defer s.release()

	a, ok := s.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// Deposit increases the account's balance by amount.
func (s *Store) Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if err := s.acquire(ctx); err != nil {
		return domain.Account{}, err
	}
	defer s.release()

	a, ok := s.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	prev := a
	a.Balance = a.Balance.Add(amount)
	s.accounts[number] = a

	if err := s.persist(); err != nil {
		s.accounts[number] = prev

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

// Withdraw decreases the account's balance by amount.
// The sufficiency check and the adjustment happen under the same lock.
func (s *Store) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if err := s.acquire(ctx); err != nil {
		return domain.Account{}, err
	}
	defer s.release()

	a, ok := s.accounts[number]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if a.Balance.LessThan(amount) {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	prev := a
	a.Balance = a.Balance.Sub(amount)
	s.accounts[number] = a

	if err := s.persist(); err != nil {
		s.accounts[number] = prev

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

// Transfer debits from and credits to as a single atomic unit.
// Both mutations reach the snapshot together or not at all.
func (s *Store) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	if err := s.acquire(ctx); err != nil {
		return result, err
	}
	defer s.release()

	fromAccount, ok := s.accounts[from]
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	toAccount, ok := s.accounts[to]
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	if fromAccount.Balance.LessThan(amount) {
		return result, domain.ErrInsufficientBalance
	}

	prevFrom, prevTo := fromAccount, toAccount

	fromAccount.Balance = fromAccount.Balance.Sub(amount)
	toAccount.Balance = toAccount.Balance.Add(amount)
	s.accounts[from] = fromAccount
	s.accounts[to] = toAccount

	if err := s.persist(); err != nil {
		s.accounts[from] = prevFrom
		s.accounts[to] = prevTo

		l.Error().Err(err).Send()

		return result, errorspkg.ErrInternal
	}

	result.FromAccount = fromAccount
	result.ToAccount = toAccount

	return result, nil
}
