// Package prober implements the read-process-commit cycle of sentinel
// tracked polling.
//
// One call to Probe reads the stored sentinel, hands it to the Processor and,
// if the Processor found something new, commits the returned sentinel:
//
//	p := prober.New[int64](memory.NewStore[int64](), proc)
//	outcome, err := p.Probe(ctx)
//
// Probe never retries. A failure is reported once and the cycle stops; the
// auto package decides what to do next.
package prober

import (
	"context"

	"github.com/vietddude/prober/internal/core/domain"
	"github.com/vietddude/prober/internal/infra/storage"
)

// Prober composes one sentinel store and one processor.
type Prober[S any] struct {
	store     storage.SentinelStore[S]
	processor Processor[S]
}

// New creates a prober over the given store and processor.
func New[S any](store storage.SentinelStore[S], processor Processor[S]) *Prober[S] {
	return &Prober[S]{store: store, processor: processor}
}

// Probe runs one cycle. The returned error is a *domain.ProbeError and is
// non-nil exactly when the outcome is domain.OutcomeError.
//
// If the processor succeeds but the commit fails, the computed sentinel is
// dropped and the failure is reported as a store failure.
func (p *Prober[S]) Probe(ctx context.Context) (domain.Outcome, error) {
	current, err := p.store.Current(ctx)
	if err != nil {
		return domain.OutcomeError, domain.NewStoreFailure(err)
	}

	next, err := p.processor.Next(ctx, current)
	if err != nil {
		return domain.OutcomeError, domain.NewProcessorFailure(err)
	}
	if next == nil {
		return domain.OutcomeEmpty, nil
	}

	if err := p.store.Commit(ctx, *next); err != nil {
		return domain.OutcomeError, domain.NewStoreFailure(err)
	}
	return domain.OutcomeSuccess, nil
}

// Current reads the stored sentinel without side effects.
func (p *Prober[S]) Current(ctx context.Context) (*S, error) {
	return p.store.Current(ctx)
}
