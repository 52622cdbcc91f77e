package annotator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Pool hands out annotator instances to concurrent workers. Annotators
// are not required to be safe for concurrent use; each instance is held by
// one worker at a time.
type Pool struct {
	annotators chan Annotator
	size       int
	mu         sync.Mutex
	closed     bool
}

// NewPool creates a pool of n annotators built by newAnnotator.
func NewPool(size int, newAnnotator func() (Annotator, error)) (*Pool, error) {
	if size <= 0 {
		size = 1
	}

	pool := &Pool{
		annotators: make(chan Annotator, size),
		size:       size,
	}

	for i := 0; i < size; i++ {
		a, err := newAnnotator()
		if err != nil {
			_ = pool.Close() // Best-effort cleanup; original error takes precedence
			return nil, fmt.Errorf("creating annotator %d: %w", i, err)
		}
		pool.annotators <- a
	}

	return pool, nil
}

// Acquire gets an annotator from the pool, blocking if none available.
// Respects context cancellation. Returns ErrPoolClosed if the pool is closed.
func (p *Pool) Acquire(ctx context.Context) (Annotator, error) {
	select {
	case a, ok := <-p.annotators:
		if !ok {
			return nil, ErrPoolClosed
		}
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an annotator to the pool.
func (p *Pool) Release(a Annotator) {
	if a == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = closeAnnotator(a)
		return
	}

	select {
	case p.annotators <- a:
	default:
		_ = closeAnnotator(a)
	}
}

// Close closes the pooled annotators that implement io.Closer.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.annotators)
	p.mu.Unlock()

	var errs []error
	for a := range p.annotators {
		if err := closeAnnotator(a); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Size returns the pool size.
func (p *Pool) Size() int {
	return p.size
}

func closeAnnotator(a Annotator) error {
	if c, ok := a.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
