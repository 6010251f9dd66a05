package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/vietddude/prober/internal/core/auto"
	"github.com/vietddude/prober/internal/core/config"
	"github.com/vietddude/prober/internal/core/prober"
	"github.com/vietddude/prober/internal/health"
	redisclient "github.com/vietddude/prober/internal/infra/redis"
	"github.com/vietddude/prober/internal/infra/source"
	"github.com/vietddude/prober/internal/infra/storage"
	"github.com/vietddude/prober/internal/infra/storage/file"
	"github.com/vietddude/prober/internal/infra/storage/memory"
	"github.com/vietddude/prober/internal/infra/storage/postgres"
)

// job is one configured driver plus the resources it owns.
type job struct {
	name     string
	driver   *auto.AutoProber
	sentinel health.SentinelReader
	closer   io.Closer
}

// buildJob wires store, processor, prober and driver for one job. Config
// driven jobs always use int64 sentinels.
func (s *Service) buildJob(cfg config.JobConfig) (*job, error) {
	store, closer, err := s.buildStore(cfg)
	if err != nil {
		return nil, err
	}

	proc, err := s.buildProcessor(cfg)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	driverCfg, err := cfg.DriverConfig()
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	p := prober.New[int64](store, proc)
	driver, err := auto.New(cfg.Name, p, driverCfg,
		auto.WithLogger(s.log.With("component", "prober")))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	driver.SetStateChangeCallback(func(name string, t auto.Transition) {
		s.log.Debug("Job state changed", "job", name, "from", t.From, "to", t.To, "reason", t.Reason)
	})

	return &job{
		name:     cfg.Name,
		driver:   driver,
		sentinel: sentinelReader(p),
		closer:   closer,
	}, nil
}

func (s *Service) buildStore(cfg config.JobConfig) (storage.SentinelStore[int64], io.Closer, error) {
	codec := storage.IntCodec{}

	switch cfg.Store.Type {
	case config.StoreMemory:
		return memory.NewStore[int64](), nil, nil
	case config.StoreFile:
		st, err := file.Open[int64](cfg.Store.Path, codec)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case config.StorePostgres:
		if s.db == nil {
			return nil, nil, errors.New("postgres store requires database.url")
		}
		return postgres.NewSentinelStore[int64](s.db, cfg.Name, codec), nil, nil
	case config.StoreRedis:
		if s.redisClient == nil {
			return nil, nil, errors.New("redis store requires redis.url")
		}
		return redisclient.NewSentinelStore[int64](s.redisClient, s.cfg.Redis.Prefix, cfg.Name, codec), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func (s *Service) buildProcessor(cfg config.JobConfig) (prober.Processor[int64], error) {
	if s.db == nil {
		return nil, errors.New("sources require database.url")
	}

	switch cfg.Source.Type {
	case config.SourceSequence:
		return source.NewSequence(s.db, cfg.Source.Sequence), nil
	case config.SourceTable:
		emitter := &LogEmitter{log: s.log.With("job", cfg.Name)}
		return source.NewTable(s.db, source.TableConfig{
			Table:  cfg.Source.Table,
			Column: cfg.Source.Column,
			Limit:  cfg.Source.Limit,
		}, emitter.EmitBatch), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
}

func sentinelReader(p *prober.Prober[int64]) health.SentinelReader {
	return func(ctx context.Context) (string, error) {
		v, err := p.Current(ctx)
		if err != nil || v == nil {
			return "", err
		}
		return strconv.FormatInt(*v, 10), nil
	}
}

// LogEmitter reports newly found ranges through the logger.
type LogEmitter struct {
	log *slog.Logger
}

func (e *LogEmitter) EmitBatch(ctx context.Context, from *int64, to int64) error {
	if from == nil {
		e.log.Info("New rows found", "event", "batch", "to", to)
		return nil
	}
	e.log.Info("New rows found", "event", "batch", "from", *from, "to", to)
	return nil
}
