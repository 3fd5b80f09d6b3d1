package app

import (
	"context"
	"crash_backend/internal/api"
	authAPI "crash_backend/internal/api/auth"
	gameAPI "crash_backend/internal/api/game"
	wsAPI "crash_backend/internal/api/ws"
	"crash_backend/internal/clock"
	"crash_backend/internal/config"
	"crash_backend/internal/config/env"
	"crash_backend/internal/event"
	"crash_backend/internal/logger"
	"crash_backend/internal/repository"
	"crash_backend/internal/repository/bet_repo"
	"crash_backend/internal/repository/history_repo"
	"crash_backend/internal/repository/memory_repo"
	"crash_backend/internal/repository/stats_repo"
	"crash_backend/internal/repository/user_repo"
	"crash_backend/internal/service"
	"crash_backend/internal/service/auth"
	"crash_backend/internal/service/crashpoint"
	"crash_backend/internal/service/round"
	"crash_backend/internal/service/settlement"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// targetRTP - house RTP the crash distribution is tuned for, percent
const targetRTP = 95

type ServiceProvider struct {
	configPath string
	log        *zap.Logger

	// TXManager
	txManager repository.Transactor

	// Database. A nil pgConfig after PgConfig() means in-memory storage.
	pgConfig  config.PGConfig
	pgChecked bool
	dbClient  *pgxpool.Pool

	// Repositories
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
	betRepo     repository.BetRepository
	statsRepo   repository.StatsRepository

	// Game bits
	gameCfg    config.GameConfig
	bus        *event.Bus
	engine     *round.Engine
	settlement *settlement.Service

	// Auth bits
	jwtCfg   config.JWTConfig
	authServ service.AuthService

	// Handlers, router and HTTP config
	gameHand *gameAPI.Handler
	authHand *authAPI.Handler
	hub      *wsAPI.Hub
	httpCfg  config.HTTPConfig
	router   chi.Router
}

func newServiceProvider(configPath string) *ServiceProvider {
	return &ServiceProvider{configPath: configPath}
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	if sp.log == nil {
		cfg, err := env.NewLogConfig()
		if err != nil {
			panic("failed to get log config: " + err.Error())
		}
		l, err := logger.New(cfg.Level(), cfg.Format())
		if err != nil {
			panic("failed to build logger: " + err.Error())
		}
		sp.log = l
	}
	return sp.log
}

// PgConfig - nil when PG_DSN is not set
func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if !sp.pgChecked {
		sp.pgChecked = true
		cfg, err := env.NewPGConfig()
		if err != nil {
			sp.Logger().Warn("postgres not configured, using in-memory storage", zap.Error(err))
			return nil
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) usePG() bool {
	return sp.PgConfig() != nil
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) repository.Transactor {
	if sp.txManager == nil {
		if !sp.usePG() {
			sp.txManager = memory_repo.NewTxManager()
			return sp.txManager
		}

		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}
		sp.txManager = m
	}
	return sp.txManager
}

func (sp *ServiceProvider) UserRepo(ctx context.Context) repository.UserRepository {
	if sp.userRepo == nil {
		if sp.usePG() {
			sp.userRepo = user_repo.NewUserRepository(sp.DBClient(ctx))
		} else {
			sp.userRepo = memory_repo.NewUserRepository()
		}
	}
	return sp.userRepo
}

func (sp *ServiceProvider) HistoryRepo(ctx context.Context) repository.HistoryRepository {
	if sp.historyRepo == nil {
		if sp.usePG() {
			sp.historyRepo = history_repo.NewHistoryRepository(sp.DBClient(ctx))
		} else {
			sp.historyRepo = memory_repo.NewHistoryRepository(sp.GameCfg().HistorySize())
		}
	}
	return sp.historyRepo
}

func (sp *ServiceProvider) BetRepo(ctx context.Context) repository.BetRepository {
	if sp.betRepo == nil {
		if sp.usePG() {
			sp.betRepo = bet_repo.NewBetRepository(sp.DBClient(ctx))
		} else {
			sp.betRepo = memory_repo.NewBetRepository()
		}
	}
	return sp.betRepo
}

func (sp *ServiceProvider) StatsRepo() repository.StatsRepository {
	if sp.statsRepo == nil {
		sp.statsRepo = stats_repo.NewStatsRepository(targetRTP)
	}
	return sp.statsRepo
}

func (sp *ServiceProvider) GameCfg() config.GameConfig {
	if sp.gameCfg == nil {
		cfg, err := env.NewGameConfigFromYAML(sp.configPath)
		if err != nil {
			panic("failed to get game config: " + err.Error())
		}
		sp.gameCfg = cfg
	}
	return sp.gameCfg
}

func (sp *ServiceProvider) Bus() *event.Bus {
	if sp.bus == nil {
		sp.bus = event.NewBus(sp.Logger().Named("bus"))
	}
	return sp.bus
}

func (sp *ServiceProvider) Engine() *round.Engine {
	if sp.engine == nil {
		cfg := sp.GameCfg()
		sp.engine = round.NewEngine(
			cfg,
			sp.Bus(),
			clock.Real{},
			crashpoint.NewGenerator(nil, cfg.CrashTiers()),
			sp.Logger(),
		)
	}
	return sp.engine
}

func (sp *ServiceProvider) Settlement(ctx context.Context) *settlement.Service {
	if sp.settlement == nil {
		sp.settlement = settlement.NewService(
			sp.TXManager(ctx),
			sp.UserRepo(ctx),
			sp.BetRepo(ctx),
			sp.HistoryRepo(ctx),
			sp.StatsRepo(),
			sp.Logger(),
		)
	}
	return sp.settlement
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) AuthService(ctx context.Context) service.AuthService {
	if sp.authServ == nil {
		sp.authServ = auth.NewService(
			sp.TXManager(ctx),
			sp.UserRepo(ctx),
			sp.JWTCfg(),
			sp.GameCfg().StartingBalance(),
			sp.Logger(),
		)
	}
	return sp.authServ
}

func (sp *ServiceProvider) GameHandler() *gameAPI.Handler {
	if sp.gameHand == nil {
		sp.gameHand = gameAPI.NewHandler(gameAPI.HandlerDeps{
			Serv:  sp.Engine(),
			Stats: sp.StatsRepo(),
		})
	}
	return sp.gameHand
}

func (sp *ServiceProvider) AuthHandler(ctx context.Context) *authAPI.Handler {
	if sp.authHand == nil {
		sp.authHand = authAPI.NewHandler(authAPI.HandlerDeps{
			Serv: sp.AuthService(ctx),
			Log:  sp.Logger(),
		})
	}
	return sp.authHand
}

func (sp *ServiceProvider) Hub(ctx context.Context) *wsAPI.Hub {
	if sp.hub == nil {
		sp.hub = wsAPI.NewHub(wsAPI.HubDeps{
			Game:  sp.Engine(),
			Auth:  sp.AuthService(ctx),
			Users: sp.UserRepo(ctx),
			Log:   sp.Logger(),
		})
	}
	return sp.hub
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}
	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		sp.router = api.NewRouter(api.RouterDeps{
			Game:     sp.GameHandler(),
			Auth:     sp.AuthHandler(ctx),
			WS:       sp.Hub(ctx),
			Verifier: sp.AuthService(ctx),
		})
	}
	return sp.router
}

// Close releases the database pool.
func (sp *ServiceProvider) Close() {
	if sp.dbClient != nil {
		sp.dbClient.Close()
	}
}
