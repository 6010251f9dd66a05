package prober

import "context"

// Processor computes the next sentinel from the current one.
//
// current is nil on the first run. Returning a non-nil sentinel advances the
// watermark, returning nil means nothing new exists right now. Next may be
// called repeatedly with the same current value; keeping external side
// effects idempotent is the caller's job.
type Processor[S any] interface {
	Next(ctx context.Context, current *S) (*S, error)
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc[S any] func(ctx context.Context, current *S) (*S, error)

func (f ProcessorFunc[S]) Next(ctx context.Context, current *S) (*S, error) {
	return f(ctx, current)
}
