package transferservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/go-teller/teller/pkg/randompkg"
)

func randomAccount(userID int32, balance string) domain.Account {
	return domain.Account{
		Number:    randompkg.AccountNumber(domain.AccountNumberPrefix, domain.AccountNumberLength),
		UserID:    userID,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestDeposit(t *testing.T) {
	testAccount := randomAccount(1, "1000")

	testCases := []struct {
		name          string
		number        string
		amount        string
		buildStubs    func(repo *MockRepo)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name:   "InvalidAmount",
			number: testAccount.Number,
			amount: "!@#$",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name:   "NegativeAmount",
			number: testAccount.Number,
			amount: "-100",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNonPositiveAmount.Error())
			},
		},
		{
			name:   "ZeroAmount",
			number: testAccount.Number,
			amount: "0",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNonPositiveAmount.Error())
			},
		},
		{
			name:   "AccountNotFound",
			number: testAccount.Number,
			amount: "100",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(testAccount.Number), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrAccountNotFound.Error())
			},
		},
		{
			name:   "OK",
			number: testAccount.Number,
			amount: "100",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Deposit(gomock.Any(), gomock.Eq(testAccount.Number), gomock.Eq(decimal.RequireFromString("100"))).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, testAccount, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo)

			tc.buildStubs(repo)

			tc.checkResponse(service.Deposit(context.Background(), tc.number, tc.amount))
		})
	}
}

func TestWithdraw(t *testing.T) {
	testAccount := randomAccount(1, "900")

	testCases := []struct {
		name          string
		number        string
		amount        string
		buildStubs    func(repo *MockRepo)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name:   "InvalidAmount",
			number: testAccount.Number,
			amount: "ten",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name:   "NegativeAmount",
			number: testAccount.Number,
			amount: "-1",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNonPositiveAmount.Error())
			},
		},
		{
			name:   "InsufficientBalance",
			number: testAccount.Number,
			amount: "10000",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(testAccount.Number), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrInsufficientBalance)
			},
			checkResponse: func(res domain.Account, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
			},
		},
		{
			name:   "OK",
			number: testAccount.Number,
			amount: "100",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Withdraw(gomock.Any(), gomock.Eq(testAccount.Number), gomock.Eq(decimal.RequireFromString("100"))).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, testAccount, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo)

			tc.buildStubs(repo)

			tc.checkResponse(service.Withdraw(context.Background(), tc.number, tc.amount))
		})
	}
}

func TestTransfer(t *testing.T) {
	testAccount1 := randomAccount(1, "1000")
	testAccount2 := randomAccount(2, "1000")
	testAmount := "100"

	testTxResult := domain.TransferTxResult{
		FromAccount: testAccount1,
		ToAccount:   testAccount2,
	}

	type input struct {
		from   string
		to     string
		amount string
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(repo *MockRepo)
		checkResponse func(res domain.TransferTxResult, err error)
	}{
		{
			name: "SameAccount",
			input: input{
				from:   testAccount1.Number,
				to:     testAccount1.Number,
				amount: testAmount,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrSameAccountTransfer.Error())
			},
		},
		{
			name: "InvalidAmount",
			input: input{
				from:   testAccount1.Number,
				to:     testAccount2.Number,
				amount: "!@#$",
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInvalidAmount.Error())
			},
		},
		{
			name: "NegativeAmount",
			input: input{
				from:   testAccount1.Number,
				to:     testAccount2.Number,
				amount: "-100",
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrNonPositiveAmount.Error())
			},
		},
		{
			name: "InsufficientBalance",
			input: input{
				from:   testAccount1.Number,
				to:     testAccount2.Number,
				amount: "10000",
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(testAccount1.Number), gomock.Eq(testAccount2.Number), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, domain.ErrInsufficientBalance)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, domain.ErrInsufficientBalance.Error())
			},
		},
		{
			name: "RepoUnavailable",
			input: input{
				from:   testAccount1.Number,
				to:     testAccount2.Number,
				amount: testAmount,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(gomock.Any(), gomock.Eq(testAccount1.Number), gomock.Eq(testAccount2.Number), gomock.Any()).
					Times(1).
					Return(domain.TransferTxResult{}, errorspkg.ErrUnavailable)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.Empty(t, res)
				require.EqualError(t, err, errorspkg.ErrUnavailable.Error())
			},
		},
		{
			name: "OK",
			input: input{
				from:   testAccount1.Number,
				to:     testAccount2.Number,
				amount: testAmount,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(
						gomock.Any(),
						gomock.Eq(testAccount1.Number),
						gomock.Eq(testAccount2.Number),
						gomock.Eq(decimal.RequireFromString(testAmount)),
					).
					Times(1).
					Return(testTxResult, nil)
			},
			checkResponse: func(res domain.TransferTxResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			service := New(repo)

			tc.buildStubs(repo)

			tc.checkResponse(service.Transfer(
				context.Background(),
				tc.input.from,
				tc.input.to,
				tc.input.amount))
		})
	}
}
