package autochannel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eclipse/pkg/logging"
)

// Future is the pending result of an outbound call.
type Future[T any] struct {
	mu        sync.Mutex
	completed bool
	val       T
	err       error
	callbacks []func(T, error)
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// OnComplete attaches a continuation. If the future already completed, fn
// runs immediately on the caller's goroutine.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	if f.completed {
		val, err := f.val, f.err
		f.mu.Unlock()
		fn(val, err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}

func (f *Future[T]) complete(val T, err error) {
	f.mu.Lock()
	f.val, f.err = val, err
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, fn := range callbacks {
		fn(val, err)
	}
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// MaxConcurrent bounds the number of calls in flight. Defaults to 16.
	MaxConcurrent int

	// CallTimeout bounds a single call. Defaults to 30 seconds.
	CallTimeout time.Duration

	// Metrics receives attempt and result counters. Optional.
	Metrics *Metrics
}

// Executor runs outbound calls off the caller's goroutine.
//
// Submitting never blocks: each call gets its own goroutine which waits
// for a concurrency slot. The executor tracks every call together with its
// continuation so that Drain can wait for quiescence.
type Executor struct {
	config ExecutorConfig
	slots  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// NewExecutor creates an executor. Calls are cancelled when ctx is done
// or Close is called.
func NewExecutor(ctx context.Context, config ExecutorConfig) *Executor {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 16
	}
	if config.CallTimeout <= 0 {
		config.CallTimeout = 30 * time.Second
	}
	if config.Metrics == nil {
		config.Metrics = NewMetrics()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Executor{
		config: config,
		slots:  make(chan struct{}, config.MaxConcurrent),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Metrics returns the metrics the executor records into.
func (e *Executor) Metrics() *Metrics {
	return e.config.Metrics
}

// Submit runs call asynchronously and invokes then with its result on the
// executor goroutine. then may be nil. Panics in call are converted into
// errors so that a single broken call never takes the process down.
func Submit[T any](e *Executor, kind MutationKind, call func(ctx context.Context) (T, error), then func(T, error)) *Future[T] {
	f := newFuture[T]()
	if then != nil {
		f.callbacks = append(f.callbacks, then)
	}

	e.config.Metrics.RecordAttempt(kind)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		val, err := runCall(e, kind, call)
		e.config.Metrics.RecordResult(kind, err)
		f.complete(val, err)
	}()
	return f
}

// Do is Submit for calls without a result value.
func Do(e *Executor, kind MutationKind, call func(ctx context.Context) error, then func(error)) *Future[struct{}] {
	var cont func(struct{}, error)
	if then != nil {
		cont = func(_ struct{}, err error) { then(err) }
	}
	return Submit(e, kind, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, call(ctx)
	}, cont)
}

func runCall[T any](e *Executor, kind MutationKind, call func(ctx context.Context) (T, error)) (val T, err error) {
	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-e.ctx.Done():
		return val, fmt.Errorf("%s: %w", kind, e.ctx.Err())
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", kind, r)
			logging.Error("Executor", err, "Recovered from panic in platform call")
		}
	}()

	ctx, cancel := context.WithTimeout(e.ctx, e.config.CallTimeout)
	defer cancel()
	return call(ctx)
}

// Drain waits until no calls or continuations are in flight, or ctx ends.
func (e *Executor) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels pending calls and waits for their continuations.
func (e *Executor) Close() {
	e.cancel()
	e.wg.Wait()
}
