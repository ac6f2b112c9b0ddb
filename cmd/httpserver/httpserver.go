// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-teller/teller/internal/accountdelivery"
	"github.com/go-teller/teller/internal/accountservice"
	"github.com/go-teller/teller/internal/domain"
	"github.com/go-teller/teller/internal/middleware"
	"github.com/go-teller/teller/internal/transferdelivery"
	"github.com/go-teller/teller/internal/transferservice"
	"github.com/go-teller/teller/internal/userdelivery"
	"github.com/go-teller/teller/internal/userservice"
	"github.com/go-teller/teller/pkg/configpkg"
	"github.com/go-teller/teller/pkg/tokenpkg"
)

// Store bundles the persistence operations the services need.
// Both the relational and the snapshot-file backends satisfy it; the choice
// is made once at construction time and never inside business logic.
type Store interface {
	CreateUser(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	GetUser(ctx context.Context, id int32) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	CreateAccount(ctx context.Context, userID int32, number string) (domain.Account, error)
	DeleteAccount(ctx context.Context, userID int32, number string) error
	ListAccounts(ctx context.Context, userID int32) ([]domain.Account, error)
	GetAccount(ctx context.Context, number string) (domain.Account, error)

	Deposit(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, number string, amount decimal.Decimal) (domain.Account, error)
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (domain.TransferTxResult, error)
}

// Server holds the store, handlers router and configuration.
type Server struct {
	Store  Store
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(store Store, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(store)
	accountService := accountservice.New(store)
	transferService := transferservice.New(store)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.DELETE("/accounts/:number", accountHandler.Delete)
	authRoutes.GET("/accounts/:number/balance", accountHandler.GetBalance)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.POST("/transfers/deposit", transferHandler.Deposit)
	authRoutes.POST("/transfers/withdraw", transferHandler.Withdraw)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("accnumber", accountdelivery.ValidAccountNumber)
		if err != nil {
			return nil, errors.New("cannot register account number validator")
		}
	}

	server := &Server{
		Store:  store,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
