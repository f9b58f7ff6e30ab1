// Package session holds per-view state with an explicit lifecycle: a view is
// created when it is shown, reloaded when its inputs change and closed when it
// goes away. Loads are cancellable and results of superseded loads are dropped.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-social/internal/adapter"
	"github.com/feral-file/ff-social/internal/logger"
)

var (
	// ErrClosed is returned by operations on a closed view
	ErrClosed = errors.New("view closed")

	// ErrSuperseded is returned by a load whose result was dropped because a newer load started
	ErrSuperseded = errors.New("load superseded")

	// ErrNoInput is returned by Refresh before the first Load
	ErrNoInput = errors.New("view has no input")
)

// Result is the state displayed by a view
type Result[T any] struct {
	Data T
	Err  error
	// Loaded is false until the first load committed
	Loaded bool
	// Generation identifies the load that produced this result
	Generation uint64
}

// LoadFunc derives the data of a view from its input
type LoadFunc[I, T any] func(ctx context.Context, input I) (T, error)

// View is one view's session: its latest input, its displayed result and the
// handles of its in-flight load and background refresh
type View[I, T any] struct {
	name  string
	load  LoadFunc[I, T]
	clock adapter.Clock

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	input       I
	hasInput    bool
	generation  uint64
	cancelLoad  context.CancelFunc
	current     Result[T]
	subscribers map[int]func(Result[T])
	nextSub     int

	closed     atomic.Bool
	refreshing atomic.Bool
	stopChan   chan struct{}
	stoppedCh  chan struct{}
}

// NewView creates a view; parent bounds every load the view runs
func NewView[I, T any](parent context.Context, name string, clock adapter.Clock, load LoadFunc[I, T]) *View[I, T] {
	ctx, cancel := context.WithCancel(parent)
	return &View[I, T]{
		name:        name,
		load:        load,
		clock:       clock,
		ctx:         ctx,
		cancel:      cancel,
		subscribers: map[int]func(Result[T]){},
	}
}

// Name returns the view name used in logs
func (v *View[I, T]) Name() string {
	return v.name
}

// Current returns the displayed result
func (v *View[I, T]) Current() Result[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Input returns the latest input and whether one was set
func (v *View[I, T]) Input() (I, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input, v.hasInput
}

// OnChange subscribes fn to committed results and returns its unsubscribe func
func (v *View[I, T]) OnChange(fn func(Result[T])) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextSub
	v.nextSub++
	v.subscribers[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subscribers, id)
	}
}

// Load sets a new input, cancels any in-flight load and derives the view.
// It blocks until the load finishes; a load overtaken by a newer one
// returns ErrSuperseded and leaves the displayed result untouched.
func (v *View[I, T]) Load(input I) (Result[T], error) {
	return v.start(input, false)
}

// Refresh reloads the view with its latest input
func (v *View[I, T]) Refresh() (Result[T], error) {
	v.mu.Lock()
	input, ok := v.input, v.hasInput
	v.mu.Unlock()
	if !ok {
		return Result[T]{}, ErrNoInput
	}
	return v.start(input, true)
}

func (v *View[I, T]) start(input I, refresh bool) (Result[T], error) {
	if v.closed.Load() {
		return Result[T]{}, ErrClosed
	}

	v.mu.Lock()
	if v.cancelLoad != nil {
		v.cancelLoad()
	}
	v.generation++
	gen := v.generation
	v.input, v.hasInput = input, true
	ctx, cancel := context.WithCancel(v.ctx)
	v.cancelLoad = cancel
	v.mu.Unlock()
	defer cancel()

	started := v.clock.Now()
	data, err := v.load(ctx, input)

	v.mu.Lock()
	if v.closed.Load() {
		v.mu.Unlock()
		return Result[T]{}, ErrClosed
	}
	if gen != v.generation {
		v.mu.Unlock()
		logger.Debug("Dropped superseded view load",
			zap.String("view", v.name),
			zap.Uint64("generation", gen),
		)
		return Result[T]{}, ErrSuperseded
	}
	v.cancelLoad = nil

	res := Result[T]{Data: data, Err: err, Loaded: true, Generation: gen}
	if err != nil && refresh {
		// a failed refresh keeps showing the last good data
		res.Data = v.current.Data
	}
	v.current = res
	subs := make([]func(Result[T]), 0, len(v.subscribers))
	for _, fn := range v.subscribers {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	if err != nil {
		logger.Warn("View load failed",
			zap.String("view", v.name),
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
	} else {
		logger.Debug("View loaded",
			zap.String("view", v.name),
			zap.Uint64("generation", gen),
			zap.Duration("took", v.clock.Since(started)),
		)
	}

	for _, fn := range subs {
		fn(res)
	}
	return res, err
}

// Loading reports whether a load is in flight
func (v *View[I, T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cancelLoad != nil
}

// StartAutoRefresh refreshes the view every interval until Close. Ticks that
// arrive while a load is in flight are skipped.
func (v *View[I, T]) StartAutoRefresh(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid refresh interval %s", interval)
	}
	if v.closed.Load() {
		return ErrClosed
	}
	if !v.refreshing.CompareAndSwap(false, true) {
		return fmt.Errorf("auto refresh of %s already running", v.name)
	}

	ticker := v.clock.NewTicker(interval)
	v.mu.Lock()
	v.stopChan = make(chan struct{})
	v.stoppedCh = make(chan struct{})
	stopChan, stoppedCh := v.stopChan, v.stoppedCh
	v.mu.Unlock()

	go func() {
		defer close(stoppedCh)
		defer ticker.Stop()

		for {
			select {
			case <-v.ctx.Done():
				return
			case <-stopChan:
				return
			case <-ticker.C():
				if v.Loading() {
					continue
				}
				if _, hasInput := v.Input(); !hasInput {
					continue
				}
				_, err := v.Refresh()
				if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
					logger.Debug("Background refresh failed", zap.String("view", v.name), zap.Error(err))
				}
			}
		}
	}()

	logger.Debug("Started auto refresh", zap.String("view", v.name), zap.Duration("interval", interval))
	return nil
}

// StopAutoRefresh stops the background refresh and waits for its loop to exit
func (v *View[I, T]) StopAutoRefresh() {
	if !v.refreshing.CompareAndSwap(true, false) {
		return
	}
	v.mu.Lock()
	stopChan, stoppedCh := v.stopChan, v.stoppedCh
	v.mu.Unlock()

	close(stopChan)
	<-stoppedCh
}

// Close cancels any in-flight load, stops the background refresh and drops
// every subscriber. Closing twice is a no-op.
func (v *View[I, T]) Close() {
	if !v.closed.CompareAndSwap(false, true) {
		return
	}
	v.cancel()
	v.StopAutoRefresh()

	v.mu.Lock()
	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}
	v.subscribers = map[int]func(Result[T]){}
	v.mu.Unlock()

	logger.Debug("Closed view", zap.String("view", v.name))
}
