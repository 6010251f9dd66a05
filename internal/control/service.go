package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vietddude/prober/internal/core/auto"
	"github.com/vietddude/prober/internal/core/config"
	"github.com/vietddude/prober/internal/health"
	redisclient "github.com/vietddude/prober/internal/infra/redis"
	"github.com/vietddude/prober/internal/infra/storage/postgres"
)

// Service runs every configured polling job and the health server.
type Service struct {
	cfg          Config
	jobs         []*job
	healthMon    *health.Monitor
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}

	mu      sync.Mutex
	results map[string]error
}

// Config holds the service configuration.
type Config struct {
	Port     int
	Jobs     []config.JobConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// NewService connects the backends and builds one driver per job.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	s := &Service{
		cfg:       cfg,
		healthMon: health.NewMonitor(),
		log:       slog.Default(),
		done:      make(chan struct{}),
		results:   make(map[string]error),
	}

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		s.db = db
		s.log.Info("Connected to PostgreSQL")
	}

	if cfg.Redis.URL != "" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			s.closeBackends()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		s.redisClient = client
		s.log.Info("Connected to Redis")
	}

	for _, jobCfg := range cfg.Jobs {
		j, err := s.buildJob(jobCfg)
		if err != nil {
			s.closeJobs()
			s.closeBackends()
			return nil, fmt.Errorf("failed to build job %s: %w", jobCfg.Name, err)
		}
		s.jobs = append(s.jobs, j)
		s.healthMon.Register(j.driver, j.sentinel)
		s.log.Info("Job configured",
			"job", jobCfg.Name,
			"store", jobCfg.Store.Type,
			"source", jobCfg.Source.Type,
			"on_success", j.driver.Config().OnSuccess,
			"on_empty", j.driver.Config().OnEmpty,
			"on_error", j.driver.Config().OnError,
		)
	}

	s.healthServer = health.NewServer(s.healthMon, cfg.Port)
	return s, nil
}

// Start starts the health server and spawns every job's driving loop.
func (s *Service) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		if err := s.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Health server failed", "error", err)
		}
	}()

	if s.db != nil {
		s.db.StartMetricsCollector(ctx)
	}

	for _, j := range s.jobs {
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			s.log.Info("Starting job", "job", j.name)
			err := j.driver.Run(ctx)
			s.setResult(j.name, err)

			switch {
			case auto.IsFatal(err):
				s.log.Error("Job aborted", "job", j.name, "error", err)
			case errors.Is(err, context.Canceled):
				s.log.Info("Job cancelled", "job", j.name)
			case err != nil:
				s.log.Error("Job failed", "job", j.name, "error", err)
			default:
				s.log.Info("Job finished", "job", j.name)
			}
		}(j)
	}

	go func() {
		s.wg.Wait()
		close(s.done)
	}()
	return nil
}

// Done is closed once every job's loop has ended.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Err joins the fatal errors of all finished jobs.
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, err := range s.results {
		if auto.IsFatal(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Health returns the current health report.
func (s *Service) Health(ctx context.Context) health.HealthReport {
	return s.healthMon.CheckHealth(ctx)
}

// Stop cancels all jobs, waits for them and releases resources.
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping service...")

	if s.cancel != nil {
		s.cancel()
		select {
		case <-s.done:
		case <-ctx.Done():
			return fmt.Errorf("jobs did not stop in time: %w", ctx.Err())
		}
	}

	if err := s.healthServer.Stop(ctx); err != nil {
		s.log.Warn("Failed to stop health server", "error", err)
	}
	s.closeJobs()
	s.closeBackends()
	return nil
}

func (s *Service) setResult(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[name] = err
}

func (s *Service) closeJobs() {
	for _, j := range s.jobs {
		if j.closer == nil {
			continue
		}
		if err := j.closer.Close(); err != nil {
			s.log.Warn("Failed to close job store", "job", j.name, "error", err)
		}
	}
}

func (s *Service) closeBackends() {
	closers := map[string]io.Closer{}
	if s.redisClient != nil {
		closers["redis"] = s.redisClient
	}
	if s.db != nil {
		closers["database"] = s.db
	}
	for name, c := range closers {
		if err := c.Close(); err != nil {
			s.log.Warn("Failed to close backend", "backend", name, "error", err)
		}
	}
}
