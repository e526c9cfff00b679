package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/mcp-banking/internal/agent"
	"github.com/eaglebank/mcp-banking/internal/bank"
	bankingcmd "github.com/eaglebank/mcp-banking/internal/command"
	"github.com/eaglebank/mcp-banking/internal/handler"
	bankingqry "github.com/eaglebank/mcp-banking/internal/query"
	"github.com/eaglebank/mcp-banking/internal/repository"
	"github.com/eaglebank/mcp-banking/shared/auth"
	"github.com/eaglebank/mcp-banking/shared/config"
	"github.com/eaglebank/mcp-banking/shared/events"
	"github.com/eaglebank/mcp-banking/shared/middleware"
	redisClient "github.com/eaglebank/mcp-banking/shared/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	reset := flag.Bool("reset", false, "drop all tables, recreate them and reseed demo data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection
	db, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *reset {
		log.Println("Resetting database...")
		err = repository.Reset(ctx, db)
	} else {
		err = repository.Migrate(ctx, db)
	}
	if err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}

	// Redis is optional: without it reads go straight to Postgres and
	// notifications are posted to the agent directly.
	var redis *redisClient.Client
	if cfg.RedisAddr != "" {
		redis, err = redisClient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache and event stream: %v", err)
			redis = nil
		}
	}
	defer redis.Close()

	runtime := config.NewRuntime(cfg.MCPServerURL)
	bankClient := bank.NewClient(cfg.BankAPIURL, cfg.BankTimeout)
	agentClient := agent.NewClient(runtime, cfg.MCPTimeout)

	var notifier events.Notifier = agentClient
	if redis != nil {
		notifier = events.NewPublisher(redis.Raw(), events.BankingEventsStream)
		go func() {
			subscriber := events.NewSubscriber(redis.Raw(), events.SubscriberConfig{
				Group:   "banking-backend",
				Stream:  events.BankingEventsStream,
				Handler: agentClient.Relay,
			})
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Subscriber stopped: %v", err)
			}
		}()
	}

	// --- CQRS wiring ---
	userRepo := repository.NewUserRepository(db)
	accountReadRepo := repository.NewAccountReadRepository(db, redis.Raw())
	transactionWriteRepo := repository.NewTransactionWriteRepository(db)
	transactionReadRepo := repository.NewTransactionReadRepository(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userCmd := bankingcmd.NewUserCommandService(userRepo, bankClient, notifier)
	transferCmd := bankingcmd.NewTransferCommandService(accountReadRepo, transactionWriteRepo, notifier)
	configCmd := bankingcmd.NewConfigCommandService(runtime)
	seedCmd := bankingcmd.NewSeedService(userRepo, repository.NewSeeder(db), bankClient)

	authQry := bankingqry.NewAuthQueryService(userRepo, tokens)
	accountQry := bankingqry.NewAccountQueryService(accountReadRepo, transactionReadRepo, notifier)
	userQry := bankingqry.NewUserQueryService(userRepo)
	integrationQry := bankingqry.NewIntegrationQueryService(bankClient, agentClient, db, redis)

	if *reset {
		// Cached views would otherwise outlive the rows they describe.
		if err := accountReadRepo.Purge(ctx); err != nil {
			log.Printf("Failed to purge cached account views: %v", err)
		}
	}

	if cfg.SeedDemoData || *reset {
		seeded, err := seedCmd.SeedDemoData(ctx)
		if err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		if seeded {
			log.Println("Demo data seeded")
		}
	}

	cookie := middleware.CookieSettings{Name: cfg.CookieName, Secure: cfg.CookieSecure}
	authn := middleware.NewAuthenticator(tokens, userRepo, cfg.CookieName)

	authHandler := handler.NewAuthHandler(userCmd, authQry, cookie)
	accountHandler := handler.NewAccountHandler(accountQry)
	transferHandler := handler.NewTransferHandler(transferCmd)
	bankHandler := handler.NewBankHandler(userCmd, integrationQry)
	mcpHandler := handler.NewMCPHandler(integrationQry)
	adminHandler := handler.NewAdminHandler(configCmd, userQry)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	router.GET("/health", handler.Health(integrationQry))
	router.POST("/register", authHandler.Register)
	router.POST("/token", authHandler.Token)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	authed := router.Group("", middleware.AuthMiddleware(authn))
	{
		authed.GET("/me", authHandler.Me)

		authed.GET("/accounts", accountHandler.ListAccounts)
		authed.GET("/accounts/:accountId", accountHandler.GetAccount)
		authed.GET("/accounts/:accountId/balance", accountHandler.GetBalance)
		authed.GET("/accounts/:accountId/transactions", accountHandler.ListTransactions)
		authed.POST("/transfer", transferHandler.Transfer)

		authed.GET("/bank/portfolio", bankHandler.Portfolio)
		authed.GET("/bank/status", bankHandler.Status)
		authed.GET("/bank/customers", bankHandler.Customers)
		authed.POST("/bank/sync", bankHandler.Sync)

		authed.GET("/mcp/status", mcpHandler.Status)
		authed.POST("/mcp/query", mcpHandler.Query)
	}

	admin := authed.Group("", middleware.RequireAdmin(cfg.AdminUsernames))
	{
		admin.GET("/admin/users", adminHandler.ListUsers)
		admin.POST("/config", adminHandler.UpdateConfig)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Banking backend starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}
}

// corsConfig allows credentialed requests. Without an explicit origin list
// every origin is reflected back, since "*" cannot be combined with cookies.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) > 0 {
		c.AllowOrigins = origins
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}
