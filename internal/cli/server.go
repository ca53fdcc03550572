package cli

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"fintrex-quiz/internal/app"
	"fintrex-quiz/internal/config"
	"fintrex-quiz/internal/domain"
	"fintrex-quiz/internal/infra/memory"
	pginfra "fintrex-quiz/internal/infra/postgres"
	redisinfra "fintrex-quiz/internal/infra/redis"
	transport "fintrex-quiz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Normalize()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "4000"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var bankLoader memory.BankLoader = memory.NewStaticBankLoader(sampleBanks(cfg.Quiz.Bank))
	var players app.PlayerRepository = memory.NewPlayerRepository(cfg.Quiz.WinnerThreshold)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		bankLoader = pginfra.NewBankLoader(pool)

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		players = pginfra.NewPlayerRepository(db, cfg.Quiz.WinnerThreshold)
	}

	var banks app.BankRepository
	var sessionStore app.SessionStore
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, bankLoader, bankTTL)
		sessionStore = redisinfra.NewSessionStore(redisClient, sessionTTL)
	} else {
		banks = memory.NewBankRepository(bankLoader, bankTTL)
		sessionStore = memory.NewSessionStore()
	}

	playerService := app.NewPlayerService(players, cfg.Quiz.Questions)
	sessionService := app.NewSessionService(sessionStore, banks, players, app.SessionSettings{
		BankID:      cfg.Quiz.Bank,
		Questions:   cfg.Quiz.Questions,
		DurationSec: cfg.Quiz.DurationSec,
	})

	apiHandler := transport.NewAPIHandler(playerService)
	playHandler := transport.NewPlayHandler(sessionService, cfg.Quiz.WinnerThreshold)

	mux := http.NewServeMux()
	apiHandler.Register(mux)
	mux.HandleFunc("/ws/play", playHandler.ServePlay)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting fintrex quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBanks is the no-database fallback; production loads banks from
// Postgres JSONB instead.
func sampleBanks(bankID string) map[string]domain.Bank {
	return map[string]domain.Bank{
		bankID: {
			ID: bankID,
			Questions: []domain.Question{
				{
					Text:    "Which of these is a savings product?",
					Options: []string{"Fixed deposit", "Lease", "Pawning", "Gold loan"},
					Answer:  "Fixed deposit",
				},
				{
					Text:    "What does NIC stand for?",
					Options: []string{"National Identity Card", "National Income Code", "New Identity Card", "National Insurance Card"},
					Answer:  "National Identity Card",
				},
				{
					Text:    "Which month is Customer Service Week celebrated in?",
					Options: []string{"October", "January", "April", "July"},
					Answer:  "October",
				},
				{
					Text:    "What is the interest you earn on a deposit called?",
					Options: []string{"Return", "Premium", "Levy", "Margin"},
					Answer:  "Return",
				},
				{
					Text:    "Which document proves a lease agreement?",
					Options: []string{"Contract", "Receipt", "Voucher", "Invoice"},
					Answer:  "Contract",
				},
				{
					Text:    "What is 2 + 2?",
					Options: []string{"4", "3", "5", "22"},
					Answer:  "4",
				},
				{
					Text:    "Which of these is a valid local mobile prefix?",
					Options: []string{"07", "05", "02", "09"},
					Answer:  "07",
				},
				{
					Text:    "How many digits does the new NIC format have?",
					Options: []string{"12", "9", "10", "11"},
					Answer:  "12",
				},
				{
					Text:    "What should you do before signing a finance agreement?",
					Options: []string{"Read the terms", "Sign immediately", "Ignore the fine print", "Ask a friend to sign"},
					Answer:  "Read the terms",
				},
				{
					Text:    "Which channel is fastest for a balance inquiry?",
					Options: []string{"Mobile app", "Branch visit", "Postal mail", "Fax"},
					Answer:  "Mobile app",
				},
				{
					Text:    "What does a fixed deposit require?",
					Options: []string{"A locked-in period", "Daily withdrawals", "A credit card", "A guarantor"},
					Answer:  "A locked-in period",
				},
				{
					Text:    "Who should know your online banking password?",
					Options: []string{"Only you", "Your bank officer", "Your family", "Customer support"},
					Answer:  "Only you",
				},
			},
		},
	}
}
