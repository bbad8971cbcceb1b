package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/bloodbowl-league/internal/config"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/competition"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/match"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/progression"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/roster"
	"github.com/riskibarqy/bloodbowl-league/internal/domain/txn"
	repocache "github.com/riskibarqy/bloodbowl-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/bloodbowl-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/bloodbowl-league/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/bloodbowl-league/internal/platform/cache"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"
)

const dbPingTimeout = 5 * time.Second

type storage struct {
	competitions competition.Repository
	rosters      roster.Repository
	matches      match.Repository
	events       progression.Repository
	uow          txn.UnitOfWork
	close        func() error
}

func openStorage(ctx context.Context, cfg config.Config, clock clockwork.Clock, logger *logging.Logger) (storage, error) {
	var out storage

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := otelsqlx.Open("postgres", postgresDSN(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return storage{}, fmt.Errorf("open postgres: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return storage{}, fmt.Errorf("ping postgres: %w", err)
		}

		store := postgres.NewStore(db)
		out = storage{
			competitions: store.Competitions(),
			rosters:      store.Rosters(),
			matches:      store.Matches(),
			events:       store.Events(),
			uow:          store,
			close:        db.Close,
		}
		logger.Info("storage configured", "driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL))
	default:
		store := memory.NewStore()
		if cfg.StorageSeedDemo {
			store.SeedDemo(clock.Now().UTC())
		}
		out = storage{
			competitions: store.Competitions(),
			rosters:      store.Rosters(),
			matches:      store.Matches(),
			events:       store.Events(),
			uow:          store,
			close:        func() error { return nil },
		}
		logger.Info("storage configured", "driver", config.StorageMemory, "seed_demo", cfg.StorageSeedDemo)
	}

	if cfg.CacheEnabled {
		out.competitions = repocache.NewCompetitionRepository(out.competitions, basecache.NewStore(cfg.CacheTTL, clock))
	}

	return out, nil
}
