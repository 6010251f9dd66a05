package control

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/vietddude/prober/internal/core/auto"
	"github.com/vietddude/prober/internal/core/config"
	"github.com/vietddude/prober/internal/core/prober"
	"github.com/vietddude/prober/internal/health"
	"github.com/vietddude/prober/internal/infra/storage/file"
	"github.com/vietddude/prober/internal/infra/storage/memory"
)

func newTestService(t *testing.T, jobs ...*job) *Service {
	t.Helper()
	s := &Service{
		healthMon: health.NewMonitor(),
		log:       slog.Default(),
		done:      make(chan struct{}),
		results:   make(map[string]error),
	}
	for _, j := range jobs {
		s.jobs = append(s.jobs, j)
		s.healthMon.Register(j.driver, j.sentinel)
	}
	s.healthServer = health.NewServer(s.healthMon, 0)
	t.Cleanup(func() { _ = s.healthServer.Stop(context.Background()) })
	return s
}

func newTestJob(t *testing.T, name string, proc prober.Processor[int64], cfg auto.Config) *job {
	t.Helper()
	p := prober.New[int64](memory.NewStore[int64](), proc)
	driver, err := auto.New(name, p, cfg)
	if err != nil {
		t.Fatalf("auto.New: %v", err)
	}
	return &job{name: name, driver: driver, sentinel: sentinelReader(p)}
}

// countTo advances by one until limit, then reports nothing new.
func countTo(limit int64) prober.ProcessorFunc[int64] {
	return func(ctx context.Context, current *int64) (*int64, error) {
		next := int64(0)
		if current != nil {
			next = *current + 1
		}
		if next > limit {
			return nil, nil
		}
		return &next, nil
	}
}

func waitDone(t *testing.T, s *Service) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("service did not finish")
	}
}

func TestService_RunsJobsToCompletion(t *testing.T) {
	s := newTestService(t, newTestJob(t, "orders", countTo(4), auto.DefaultConfig()))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, s)

	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	report := s.Health(context.Background())
	jh := report.Jobs["orders"]
	if jh.Sentinel != "4" {
		t.Errorf("sentinel = %q, want 4", jh.Sentinel)
	}
	if jh.State != auto.StateTerminated {
		t.Errorf("state = %s, want terminated", jh.State)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestService_FatalJobReported(t *testing.T) {
	failing := prober.ProcessorFunc[int64](func(ctx context.Context, current *int64) (*int64, error) {
		return nil, errors.New("source down")
	})
	s := newTestService(t,
		newTestJob(t, "good", countTo(2), auto.DefaultConfig()),
		newTestJob(t, "bad", failing, auto.DefaultConfig()),
	)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitDone(t, s)

	err := s.Err()
	if !auto.IsFatal(err) {
		t.Fatalf("Err() = %v, want fatal", err)
	}
	var fatal *auto.FatalError
	if !errors.As(err, &fatal) || fatal.Job != "bad" {
		t.Errorf("fatal job = %v, want bad", fatal)
	}

	if got := s.Health(context.Background()).SystemStatus; got != health.StatusCritical {
		t.Errorf("system status = %s, want critical", got)
	}
}

func TestService_StopCancelsRunningJobs(t *testing.T) {
	cfg := auto.Config{
		OnSuccess: auto.Continue(),
		OnEmpty:   auto.FixedDelay(time.Hour),
		OnError:   auto.Abort(),
	}
	s := newTestService(t, newTestJob(t, "idle", countTo(0), cfg))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	waitDone(t, s)

	if err := s.Err(); err != nil {
		t.Errorf("cancelled job should not be fatal, got %v", err)
	}
}

func TestService_BuildStore(t *testing.T) {
	s := &Service{log: slog.Default()}

	st, closer, err := s.buildStore(config.JobConfig{Name: "a", Store: config.StoreConfig{Type: config.StoreMemory}})
	if err != nil || closer != nil {
		t.Fatalf("memory store: closer=%v err=%v", closer, err)
	}
	if _, ok := st.(*memory.Store[int64]); !ok {
		t.Errorf("memory store type = %T", st)
	}

	path := filepath.Join(t.TempDir(), "a.sentinel")
	st, closer, err = s.buildStore(config.JobConfig{Name: "a", Store: config.StoreConfig{Type: config.StoreFile, Path: path}})
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	defer closer.Close()
	if fs, ok := st.(*file.Store[int64]); !ok || fs.Path() != path {
		t.Errorf("file store = %T", st)
	}

	for _, typ := range []string{config.StorePostgres, config.StoreRedis, "nope"} {
		if _, _, err := s.buildStore(config.JobConfig{Name: "a", Store: config.StoreConfig{Type: typ}}); err == nil {
			t.Errorf("store %q without backend: expected error", typ)
		}
	}
}

func TestService_BuildProcessorRequiresDatabase(t *testing.T) {
	s := &Service{log: slog.Default()}
	_, err := s.buildProcessor(config.JobConfig{Name: "a", Source: config.SourceConfig{Type: config.SourceSequence, Sequence: "s"}})
	if err == nil {
		t.Fatal("expected error without database")
	}
}

func TestLogEmitter(t *testing.T) {
	e := &LogEmitter{log: slog.Default()}
	from := int64(3)
	if err := e.EmitBatch(context.Background(), &from, 7); err != nil {
		t.Errorf("EmitBatch: %v", err)
	}
	if err := e.EmitBatch(context.Background(), nil, 7); err != nil {
		t.Errorf("EmitBatch without start: %v", err)
	}
}
