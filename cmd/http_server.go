package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/auth"
	authPostgres "github.com/frahmantamala/worktrack/internal/auth/postgres"
	"github.com/frahmantamala/worktrack/internal/clock"
	"github.com/frahmantamala/worktrack/internal/core/events"
	"github.com/frahmantamala/worktrack/internal/form"
	formPostgres "github.com/frahmantamala/worktrack/internal/form/postgres"
	"github.com/frahmantamala/worktrack/internal/org"
	orgPostgres "github.com/frahmantamala/worktrack/internal/org/postgres"
	"github.com/frahmantamala/worktrack/internal/report"
	reportPostgres "github.com/frahmantamala/worktrack/internal/report/postgres"
	taskPostgres "github.com/frahmantamala/worktrack/internal/task/postgres"
	"github.com/frahmantamala/worktrack/internal/timeentry"
	entryPostgres "github.com/frahmantamala/worktrack/internal/timeentry/postgres"
	"github.com/frahmantamala/worktrack/internal/transport/middleware"
	"github.com/frahmantamala/worktrack/internal/transport/rest"
	"github.com/frahmantamala/worktrack/internal/user"
	userPostgres "github.com/frahmantamala/worktrack/internal/user/postgres"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight event handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return fmt.Errorf("ledger timezone: %w", err)
	}
	clk := clock.NewSystem(loc)

	orgService := org.NewService(orgPostgres.NewOrgRepository(deps.DB), lg)
	gate := approval.NewGate(orgService, clk, lg)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, cfg.Security.BCryptCost, lg)
	userService := user.NewService(userPostgres.NewUserRepository(deps.Gorm), orgService, lg)

	entryRepo := entryPostgres.NewTimeEntryRepository(deps.Gorm)
	taskRepo := taskPostgres.NewTaskRepository(deps.Gorm)
	formService := form.NewService(formPostgres.NewFormRepository(deps.Gorm), orgService, clk, lg)
	entryService := timeentry.NewService(entryRepo, taskRepo, gate, deps.EventBus, clk, lg)
	reportService := report.NewService(
		reportPostgres.NewReportRepository(deps.Gorm),
		entryRepo, taskRepo, formService, gate, orgService, deps.EventBus, clk,
		report.Config{
			Location:        loc,
			HistoryLimit:    cfg.Ledger.HistoryLimit,
			MaxHistoryLimit: cfg.Ledger.MaxHistoryLimit,
		},
		lg,
	)

	var validator *middleware.OpenAPIValidator
	if cfg.Ledger.OpenAPIValidation {
		validator, err = middleware.NewOpenAPIValidator(cfg.Ledger.OpenAPISpecPath, lg)
		if err != nil {
			return err
		}
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		TimeEntry: timeentry.NewHandler(entryService),
		Report:    report.NewHandler(reportService),
		Form:      form.NewHandler(formService),
	}, rest.Options{
		DB:             deps.DB,
		Membership:     orgService,
		Validator:      validator,
		AllowedOrigins: strings.Split(cfg.Server.AllowedOrigins, ","),
		SpecPath:       cfg.Ledger.OpenAPISpecPath,
		Logger:         lg,
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := initLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.NewAuditHandler(lg).RegisterEventHandlers(bus)

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gdb,
		Router:   chi.NewRouter(),
		EventBus: bus,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm. TranslateError maps unique
// violations onto gorm.ErrDuplicatedKey.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
