package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/handlers"
	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dynamoClient, err := initDynamoDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize DynamoDB")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Endpoint,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	transactionRepo := repository.NewTransactionRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	budgetRepo := repository.NewBudgetRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	categoryRepo := repository.NewCategoryRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	goalRepo := repository.NewSavingsGoalRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	cardRepo := repository.NewCreditCardRepository(dynamoClient, cfg.DynamoDB.TableName, logger)

	// Initialize services
	tokenService, err := service.NewTokenService(&cfg.JWT, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize token service")
	}

	profileCache := service.NewProfileCache(redisClient, cfg.Redis.ProfileTTL, logger)
	authService := service.NewAuthService(userRepo, tokenService, profileCache, logger)

	production := cfg.Server.Production
	authHandlers := handlers.NewAuthHandlers(authService, logger, production)
	transactionHandlers := handlers.NewTransactionHandlers(transactionRepo, logger, production)
	budgetHandlers := handlers.NewBudgetHandlers(budgetRepo, logger, production)
	categoryHandlers := handlers.NewCategoryHandlers(categoryRepo, logger, production)
	goalHandlers := handlers.NewSavingsGoalHandlers(goalRepo, logger, production)
	cardHandlers := handlers.NewCreditCardHandlers(cardRepo, logger, production)

	authMiddleware := middleware.NewAuthMiddleware(tokenService, logger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.GlobalWindow, cfg.RateLimit.TrustForwardedFor, logger)

	router := setupRouter(routerDeps{
		cfg:                 cfg,
		authHandlers:        authHandlers,
		transactionHandlers: transactionHandlers,
		budgetHandlers:      budgetHandlers,
		categoryHandlers:    categoryHandlers,
		goalHandlers:        goalHandlers,
		cardHandlers:        cardHandlers,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		logger:              logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func initDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDB.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.DynamoDB.Endpoint,
						SigningRegion: cfg.DynamoDB.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.Info("DynamoDB client initialized")
	return client, nil
}

type routerDeps struct {
	cfg                 *config.Config
	authHandlers        *handlers.AuthHandlers
	transactionHandlers *handlers.TransactionHandlers
	budgetHandlers      *handlers.BudgetHandlers
	categoryHandlers    *handlers.CategoryHandlers
	goalHandlers        *handlers.SavingsGoalHandlers
	cardHandlers        *handlers.CreditCardHandlers
	authMiddleware      *middleware.AuthMiddleware
	rateLimiter         *middleware.RateLimiter
	logger              *logrus.Logger
}

func setupRouter(deps routerDeps) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(deps.logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")

	globalPolicy := middleware.Policy{
		Name:   "global",
		Limit:  deps.cfg.RateLimit.GlobalLimit,
		Window: deps.cfg.RateLimit.GlobalWindow,
	}
	authPolicy := middleware.Policy{
		Name:   "auth-strict",
		Limit:  deps.cfg.RateLimit.AuthLimit,
		Window: deps.cfg.RateLimit.AuthWindow,
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(deps.rateLimiter.Limit(globalPolicy))

	// The strict limiter wraps only login and register, ahead of any
	// credential checking.
	auth := api.PathPrefix("/auth").Subrouter()
	strict := deps.rateLimiter.Limit(authPolicy)
	auth.Handle("/login", strict(http.HandlerFunc(deps.authHandlers.Login))).Methods("POST", "OPTIONS")
	auth.Handle("/register", strict(http.HandlerFunc(deps.authHandlers.Register))).Methods("POST", "OPTIONS")
	auth.HandleFunc("/refresh", deps.authHandlers.Refresh).Methods("POST", "OPTIONS")
	auth.HandleFunc("/logout", deps.authHandlers.Logout).Methods("POST", "OPTIONS")
	auth.Handle("/profile", deps.authMiddleware.RequireAuth(http.HandlerFunc(deps.authHandlers.Profile))).Methods("GET", "OPTIONS")

	protected := api.PathPrefix("/").Subrouter()
	protected.Use(deps.authMiddleware.RequireAuth)

	registerResource(protected, "/transactions", resourceHandlers{
		list: deps.transactionHandlers.List, create: deps.transactionHandlers.Create,
		get: deps.transactionHandlers.Get, update: deps.transactionHandlers.Update,
		delete: deps.transactionHandlers.Delete,
	})
	registerResource(protected, "/budgets", resourceHandlers{
		list: deps.budgetHandlers.List, create: deps.budgetHandlers.Create,
		get: deps.budgetHandlers.Get, update: deps.budgetHandlers.Update,
		delete: deps.budgetHandlers.Delete,
	})
	registerResource(protected, "/categories", resourceHandlers{
		list: deps.categoryHandlers.List, create: deps.categoryHandlers.Create,
		get: deps.categoryHandlers.Get, update: deps.categoryHandlers.Update,
		delete: deps.categoryHandlers.Delete,
	})
	registerResource(protected, "/savings-goals", resourceHandlers{
		list: deps.goalHandlers.List, create: deps.goalHandlers.Create,
		get: deps.goalHandlers.Get, update: deps.goalHandlers.Update,
		delete: deps.goalHandlers.Delete,
	})
	registerResource(protected, "/credit-cards", resourceHandlers{
		list: deps.cardHandlers.List, create: deps.cardHandlers.Create,
		get: deps.cardHandlers.Get, update: deps.cardHandlers.Update,
		delete: deps.cardHandlers.Delete,
	})

	return router
}

type resourceHandlers struct {
	list, create, get, update, delete http.HandlerFunc
}

func registerResource(router *mux.Router, prefix string, h resourceHandlers) {
	router.HandleFunc(prefix, h.list).Methods("GET", "OPTIONS")
	router.HandleFunc(prefix, h.create).Methods("POST", "OPTIONS")
	router.HandleFunc(prefix+"/{id}", h.get).Methods("GET", "OPTIONS")
	router.HandleFunc(prefix+"/{id}", h.update).Methods("PUT", "OPTIONS")
	router.HandleFunc(prefix+"/{id}", h.delete).Methods("DELETE", "OPTIONS")
}
