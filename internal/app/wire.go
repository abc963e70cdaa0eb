package app

import (
	"context"
	"fmt"

	"github.com/okian/pacematch/internal/adapters/repository"
	"github.com/okian/pacematch/internal/adapters/source"
	"github.com/okian/pacematch/internal/config"
	"github.com/okian/pacematch/internal/domain/linkage"
)

// OpenStore opens the match store selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		st, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	case config.StoreCSV, "":
		return repository.NewCSVStore(cfg.AccumulationPath), nil
	default:
		return nil, fmt.Errorf("%w: store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// NewFromConfig builds a Service whose engine, loader, store and pool sizes
// come from cfg. Later opts override the config-derived ones.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	engine := linkage.New(
		linkage.WithTimeTolerance(cfg.TimeToleranceSeconds),
		linkage.WithNameThreshold(cfg.NameSimilarityThreshold),
	)
	base := []Option{
		WithEngine(engine),
		WithStore(st),
		WithLoader(source.NewLoader(cfg.DataDir)),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithPartitions(cfg.Partitions),
	}
	return New(append(base, opts...)...), nil
}
