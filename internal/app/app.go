package app

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"opsboard/internal/config"
	"opsboard/internal/db"
	analyticsdomain "opsboard/internal/domain/analytics"
	seminarsdomain "opsboard/internal/domain/seminars"
	transactionsdomain "opsboard/internal/domain/transactions"
	unitsdomain "opsboard/internal/domain/units"
	userdomain "opsboard/internal/domain/user"
	"opsboard/internal/repository/inmemory"
	pganalytics "opsboard/internal/repository/postgres/analytics"
	pgseminars "opsboard/internal/repository/postgres/seminars"
	pgtransactions "opsboard/internal/repository/postgres/transactions"
	pgunits "opsboard/internal/repository/postgres/units"
	pguser "opsboard/internal/repository/postgres/user"
	"opsboard/internal/repository/sqlite"
	"opsboard/internal/transport/httpserver"
	"opsboard/internal/transport/httpserver/handler"
	"opsboard/pkg/logger"
)

// Services are the domain services of one storage backend.
type Services struct {
	Units        *unitsdomain.Service
	Transactions *transactionsdomain.Service
	Seminars     *seminarsdomain.Service
	Analytics    *analyticsdomain.Service
	Profiles     *userdomain.Service

	close func() error
}

func (s *Services) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

type repositories struct {
	units        unitsdomain.Repository
	transactions transactionsdomain.Repository
	seminars     seminarsdomain.Repository
	analytics    analyticsdomain.Repository
	profiles     userdomain.Repository
	close        func() error
}

// NewServices opens the configured backend and builds the services on it.
func NewServices(cfg config.Config, log logger.Logger) (*Services, error) {
	rates, err := transactionsdomain.ParseRates(cfg.FXRatesAED)
	if err != nil {
		return nil, fmt.Errorf("parse FX_RATES_AED: %w", err)
	}

	repos, err := openRepositories(cfg, log)
	if err != nil {
		return nil, err
	}

	analyticsService := analyticsdomain.NewServiceWithConfig(repos.analytics, analyticsdomain.Config{
		CacheTTL: cfg.Analytics.CacheTTL,
	})

	return &Services{
		Units:        unitsdomain.NewService(repos.units, unitsdomain.NewMemberCache(cfg.Analytics.CacheTTL)),
		Transactions: transactionsdomain.NewService(repos.transactions, transactionsdomain.NewConverter(rates), analyticsService.Invalidate),
		Seminars:     seminarsdomain.NewService(repos.seminars, analyticsService.Invalidate),
		Analytics:    analyticsService,
		Profiles:     userdomain.NewService(repos.profiles),
		close:        repos.close,
	}, nil
}

func openRepositories(cfg config.Config, log logger.Logger) (repositories, error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		log.Info("app: initializing database", "backend", cfg.DataBackend)
		conn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return repositories{}, err
		}
		if err := db.Migrate(conn, log); err != nil {
			_ = closeGorm(conn)
			return repositories{}, err
		}
		return repositories{
			units:        pgunits.NewPostgres(conn),
			transactions: pgtransactions.NewPostgres(conn),
			seminars:     pgseminars.NewPostgres(conn),
			analytics:    pganalytics.NewPostgres(conn),
			profiles:     pguser.NewPostgres(conn),
			close:        func() error { return closeGorm(conn) },
		}, nil

	case config.BackendSQLite:
		log.Info("app: initializing database", "backend", cfg.DataBackend, "path", cfg.SQLitePath)
		if err := db.MigrateSQLite(cfg.SQLitePath, log); err != nil {
			return repositories{}, err
		}
		conn, err := db.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			units:        sqlite.NewUnits(conn),
			transactions: sqlite.NewTransactions(conn),
			seminars:     sqlite.NewSeminars(conn),
			analytics:    sqlite.NewAnalytics(conn),
			profiles:     sqlite.NewProfiles(conn),
			close:        conn.Close,
		}, nil

	case config.BackendMemory:
		log.Warn("app: using in-memory storage, data is lost on exit")
		store := inmemory.NewStore()
		return repositories{
			units:        store.Units(),
			transactions: store.Transactions(),
			seminars:     store.Seminars(),
			analytics:    store.Analytics(),
			profiles:     store.Profiles(),
		}, nil

	default:
		return repositories{}, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

// Migrate applies the schema of the configured database backend.
func Migrate(cfg config.Config, log logger.Logger) error {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		conn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return err
		}
		defer closeGorm(conn)
		return db.Migrate(conn, log)
	case config.BackendSQLite:
		return db.MigrateSQLite(cfg.SQLitePath, log)
	case config.BackendMemory:
		log.Info("migrate: nothing to do for the memory backend")
		return nil
	default:
		return fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

type App struct {
	cfg        config.Config
	services   *Services
	httpServer *http.Server
}

func New(cfg config.Config, log logger.Logger) (*App, error) {
	services, err := NewServices(cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing router")
	handlers := handler.New(services.Units, services.Transactions, services.Seminars, services.Analytics, services.Profiles, log)
	router := httpserver.NewRouter(cfg, handlers, services.Units, services.Profiles, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		services:   services,
		httpServer: srv,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	return a.services.Close()
}

func closeGorm(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
