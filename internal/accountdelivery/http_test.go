package accountdelivery

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/internal/middleware"
	"github.com/go-teller/teller/pkg/errorspkg"
	"github.com/go-teller/teller/pkg/randompkg"
	"github.com/go-teller/teller/pkg/tokenpkg"
)

func randomAccount(userID int32) domain.Account {
	return domain.Account{
		Number:    randompkg.AccountNumber(domain.AccountNumberPrefix, domain.AccountNumberLength),
		UserID:    userID,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func setupServer(t *testing.T) (*MockService, *gin.Engine, tokenpkg.Maker) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	accountService := NewMockService(ctrl)
	accountHandler := NewHandler(accountService)

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	require.NoError(t, v.RegisterValidation("accnumber", ValidAccountNumber))

	server := gin.Default()
	server.Use(middleware.AuthMiddleware(tokenMaker))
	server.POST("/accounts", accountHandler.Create)
	server.GET("/accounts", accountHandler.List)
	server.DELETE("/accounts/:number", accountHandler.Delete)
	server.GET("/accounts/:number/balance", accountHandler.GetBalance)

	return accountService, server, tokenMaker
}

func TestCreateAccountAPI(t *testing.T) {
	testUserID := int32(randompkg.Intn(100)) + 1
	testAccount := randomAccount(testUserID)

	testCases := []struct {
		name          string
		setupAuth     func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker)
		buildStubs    func(accountService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "NoAuthorization",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "UserNotFound",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(testUserID)).
					Times(1).
					Return(domain.Account{}, domain.ErrUserNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "AccountLimitExceeded",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(testUserID)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountLimitExceeded)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name: "Unavailable",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(testUserID)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrUnavailable)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
			},
		},
		{
			name: "OK",
			setupAuth: func(t *testing.T, request *http.Request, tokenMaker tokenpkg.Maker) {
				middleware.AddAuthorization(t, request, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(testUserID)).
					Times(1).
					Return(testAccount, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			accountService, server, tokenMaker := setupServer(t)

			tc.buildStubs(accountService)

			recorder := httptest.NewRecorder()

			req, err := http.NewRequest(http.MethodPost, "/accounts", nil)
			require.NoError(t, err)

			tc.setupAuth(t, req, tokenMaker)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestDeleteAccountAPI(t *testing.T) {
	testUserID := int32(randompkg.Intn(100)) + 1
	testAccount := randomAccount(testUserID)

	testCases := []struct {
		name          string
		number        string
		buildStubs    func(accountService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:   "InvalidNumber",
			number: "12345",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:   "AccountNotFound",
			number: testAccount.Number,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(testUserID), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(domain.ErrAccountNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:   "NonZeroBalance",
			number: testAccount.Number,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(testUserID), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(domain.ErrNonZeroBalance)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusConflict, recorder.Code)
			},
		},
		{
			name:   "OK",
			number: testAccount.Number,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(testUserID), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			accountService, server, tokenMaker := setupServer(t)

			tc.buildStubs(accountService)

			recorder := httptest.NewRecorder()

			req, err := http.NewRequest(http.MethodDelete, "/accounts/"+tc.number, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, req, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestListAccountsAPI(t *testing.T) {
	testUserID := int32(randompkg.Intn(100)) + 1
	testAccounts := []domain.Account{
		randomAccount(testUserID),
		randomAccount(testUserID),
	}

	testCases := []struct {
		name          string
		buildStubs    func(accountService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "UserNotFound",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					List(gomock.Any(), gomock.Eq(testUserID)).
					Times(1).
					Return(nil, domain.ErrUserNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "OK",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					List(gomock.Any(), gomock.Eq(testUserID)).
					Times(1).
					Return(testAccounts, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			accountService, server, tokenMaker := setupServer(t)

			tc.buildStubs(accountService)

			recorder := httptest.NewRecorder()

			req, err := http.NewRequest(http.MethodGet, "/accounts", nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, req, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestGetBalanceAPI(t *testing.T) {
	testUserID := int32(randompkg.Intn(100)) + 1
	testAccount := randomAccount(testUserID)

	testCases := []struct {
		name          string
		number        string
		buildStubs    func(accountService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:   "InvalidNumber",
			number: "notanumber123456",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().GetBalance(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:   "AccountNotFound",
			number: testAccount.Number,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetBalance(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(decimal.Decimal{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name:   "OK",
			number: testAccount.Number,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetBalance(gomock.Any(), gomock.Eq(testAccount.Number)).
					Times(1).
					Return(decimal.RequireFromString("250.75"), nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.Contains(t, recorder.Body.String(), "250.75")
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			accountService, server, tokenMaker := setupServer(t)

			tc.buildStubs(accountService)

			recorder := httptest.NewRecorder()

			req, err := http.NewRequest(http.MethodGet, "/accounts/"+tc.number+"/balance", nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, req, tokenMaker, middleware.AuthTypeBearer, testUserID, time.Minute)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}
