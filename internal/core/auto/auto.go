// Package auto drives a prober in an unattended loop.
//
// After every probe the driver looks up the policy slot for the outcome
// (success, empty, error) and either probes again, sleeps for a fixed delay,
// sleeps along a bounded exponential backoff, or stops:
//
//	driver, _ := auto.New("orders", p, auto.Config{
//	    OnSuccess: auto.Continue(),
//	    OnEmpty:   auto.FixedDelay(10 * time.Second),
//	    OnError:   auto.WithBackoff(auto.NewBackoff(5, time.Second, time.Minute)),
//	})
//	err := driver.Run(ctx)
//
// # Termination
//
// Run returns nil when an Abort policy fires on a success or empty outcome, or
// when a backoff schedule is exhausted. An Abort policy on an error outcome
// returns a *FatalError. Cancelling ctx is the only external way to stop the
// loop; Run then returns ctx.Err().
//
// Backoff schedules are never reset by the loop itself. Call Backoff.Reset
// to re-arm a slot.
package auto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/prober/internal/core/domain"
	"github.com/vietddude/prober/internal/metrics"
)

var (
	// ErrAlreadyRunning is returned when Run is called on a live driver.
	ErrAlreadyRunning = errors.New("driver already running")
)

// Prober is the single-step operation the driver repeats.
type Prober interface {
	Probe(ctx context.Context) (domain.Outcome, error)
}

// FatalError is returned by Run when an error outcome meets an Abort policy.
type FatalError struct {
	Job string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("prober %s aborted on error: %v", e.Job, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// Sleeper suspends the caller for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option configures an AutoProber.
type Option func(*AutoProber)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(a *AutoProber) { a.log = log }
}

// WithSleeper replaces the timer used for delays.
func WithSleeper(sleep Sleeper) Option {
	return func(a *AutoProber) { a.sleep = sleep }
}

// AutoProber repeats Probe and applies the configured policies.
type AutoProber struct {
	job    string
	prober Prober
	cfg    Config
	log    *slog.Logger
	sleep  Sleeper

	running atomic.Bool
	status  *statusCollector

	mu            sync.RWMutex
	stateCallback func(job string, t Transition)
}

// New validates cfg and creates a driver for one job.
func New(job string, prober Prober, cfg Config, opts ...Option) (*AutoProber, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("job %s: %w", job, err)
	}

	a := &AutoProber{
		job:    job,
		prober: prober,
		cfg:    cfg,
		log:    slog.Default(),
		sleep:  Sleep,
		status: newStatusCollector(job),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Job returns the job name.
func (a *AutoProber) Job() string {
	return a.job
}

// Config returns the policy table. Backoff pointers are shared with the
// driver, so Reset on them takes effect on the running loop.
func (a *AutoProber) Config() Config {
	return a.cfg
}

// Status returns a snapshot of the driver.
func (a *AutoProber) Status() Status {
	return a.status.Snapshot()
}

// SetStateChangeCallback registers a callback for state changes.
func (a *AutoProber) SetStateChangeCallback(fn func(job string, t Transition)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stateCallback = fn
}

// Run drives the loop in the calling goroutine until a policy stops it or
// ctx is cancelled. A driver can be run again after Run returns.
func (a *AutoProber) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	log := a.log.With("job", a.job, "run_id", uuid.NewString())
	metrics.DriverRunning.WithLabelValues(a.job).Set(1)
	defer metrics.DriverRunning.WithLabelValues(a.job).Set(0)

	a.setState(StateRunning, "driver started")
	log.Info("Prober started")

	for {
		if err := ctx.Err(); err != nil {
			a.setState(StateTerminated, "context cancelled")
			log.Info("Prober cancelled", "error", err)
			return err
		}

		start := time.Now()
		outcome, probeErr := a.prober.Probe(ctx)
		a.record(outcome, probeErr, start)

		// A probe cut short by cancellation is a stop, not a failure.
		if err := ctx.Err(); err != nil {
			a.setState(StateTerminated, "context cancelled")
			log.Info("Prober cancelled during probe", "error", err)
			return err
		}

		wait, done, err := a.decide(log, outcome, probeErr)
		if done {
			a.setState(StateTerminated, fmt.Sprintf("%s on %s", a.cfg.PolicyFor(outcome).Kind, outcome))
			if err != nil {
				a.status.MarkFatal()
			}
			return err
		}
		if wait <= 0 {
			continue
		}

		a.setState(StateSuspended, fmt.Sprintf("waiting %s after %s", wait, outcome))
		if err := a.sleep(ctx, wait); err != nil {
			a.setState(StateTerminated, "context cancelled")
			log.Info("Prober cancelled while suspended", "error", err)
			return err
		}
		metrics.SuspendedSeconds.WithLabelValues(a.job, outcome.String()).Add(wait.Seconds())
		a.setState(StateRunning, "delay elapsed")
	}
}

// decide applies the slot for outcome. done ends the loop; err is only set
// for a fatal abort.
func (a *AutoProber) decide(
	log *slog.Logger,
	outcome domain.Outcome,
	probeErr error,
) (wait time.Duration, done bool, err error) {
	event := "probe-" + outcome.String()
	if probeErr != nil {
		log = log.With("error", probeErr)
	}
	policy := a.cfg.PolicyFor(outcome)

	switch policy.Kind {
	case PolicyAbort:
		if outcome == domain.OutcomeError {
			log.Error("Aborting on probe error", "event", event)
			return 0, true, &FatalError{Job: a.job, Err: probeErr}
		}
		log.Info("Aborting", "event", event)
		return 0, true, nil

	case PolicyDelay:
		a.logOutcome(log, outcome, "Retrying after fixed delay", "event", event, "delay", policy.Delay)
		return policy.Delay, false, nil

	case PolicyContinue:
		a.logOutcome(log, outcome, "Continuing", "event", event)
		return 0, false, nil

	case PolicyBackoff:
		delay, ok := policy.Backoff.NextDelay()
		metrics.BackoffAttempt.WithLabelValues(a.job, outcome.String()).Set(float64(policy.Backoff.Attempt()))
		if !ok {
			a.logOutcome(log, outcome, "Backoff exhausted, stopping", "event", event,
				"attempts", policy.Backoff.MaxAttempts)
			return 0, true, nil
		}
		a.logOutcome(log, outcome, "Backing off", "event", event,
			"delay", delay, "attempt", policy.Backoff.Attempt())
		return delay, false, nil
	}

	// Unreachable after Validate.
	return 0, true, fmt.Errorf("%w: unknown kind %q", ErrInvalidPolicy, policy.Kind)
}

func (a *AutoProber) logOutcome(log *slog.Logger, outcome domain.Outcome, msg string, args ...any) {
	switch outcome {
	case domain.OutcomeError:
		log.Warn(msg, args...)
	case domain.OutcomeEmpty:
		log.Info(msg, args...)
	default:
		log.Debug(msg, args...)
	}
}

func (a *AutoProber) record(outcome domain.Outcome, err error, start time.Time) {
	metrics.ProbeLatency.WithLabelValues(a.job).Observe(time.Since(start).Seconds())
	metrics.ProbesTotal.WithLabelValues(a.job, outcome.String()).Inc()

	var pe *domain.ProbeError
	if errors.As(err, &pe) {
		metrics.ProbeFailuresTotal.WithLabelValues(a.job, string(pe.Kind)).Inc()
	}
	a.status.RecordProbe(outcome, err, start)
}

func (a *AutoProber) setState(to State, reason string) {
	from := a.status.State()
	if from == to {
		return
	}
	// A rerun starts from Terminated; record it as a fresh start.
	if from == StateTerminated && to == StateRunning {
		from = StateIdle
		a.status.ClearFatal()
	}

	t := NewTransition(from, to, reason)
	a.status.RecordTransition(t)

	a.mu.RLock()
	cb := a.stateCallback
	a.mu.RUnlock()
	if cb != nil {
		cb(a.job, t)
	}
}

// Handle joins a driver started with Spawn.
type Handle struct {
	done chan struct{}
	err  error
}

// Spawn runs the driver in a new goroutine.
func (a *AutoProber) Spawn(ctx context.Context) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = a.Run(ctx)
	}()
	return h
}

// Done is closed when the loop has ended.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the loop ends and returns its result.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}
