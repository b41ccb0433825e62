package simulation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is used when a Loop is created with a non-positive interval
const DefaultTickInterval = 16 * time.Millisecond

// Loop ticks a fixed set of runners on one goroutine.
type Loop struct {
	interval time.Duration
	runners  []*Runner

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// NewLoop creates a loop over runners. Runners are ticked in the given order.
func NewLoop(interval time.Duration, runners ...*Runner) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Loop{
		interval: interval,
		runners:  runners,
		done:     make(chan struct{}),
	}
}

// Runners returns the runners driven by the loop
func (l *Loop) Runners() []*Runner {
	return l.runners
}

// Start ticks every runner once per interval until ctx is cancelled or Stop
// is called. Attached managers are detached on the loop goroutine before
// Start returns.
func (l *Loop) Start(ctx context.Context) error {
	slog.Info("Starting simulation loop",
		"runner_count", len(l.runners),
		"tick_interval", l.interval)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	l.mu.Lock()
	l.cancelFunc = cancel
	l.mu.Unlock()
	defer func() {
		close(l.done)
		slog.Info("Simulation loop shut down")
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.tick(loopCtx)

	for {
		select {
		case <-ticker.C:
			l.tick(loopCtx)
		case <-loopCtx.Done():
			slog.Info("Simulation loop stopping")
			// Managers get a live context for their teardown.
			detachCtx := context.WithoutCancel(loopCtx)
			for _, r := range l.runners {
				r.Detach(detachCtx)
			}
			return nil
		}
	}
}

// Stop cancels the loop and waits for it to return.
func (l *Loop) Stop() error {
	l.mu.Lock()
	cancel := l.cancelFunc
	l.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping simulation loop")
		cancel()
		<-l.done
	}
	return nil
}

func (l *Loop) tick(ctx context.Context) {
	for _, r := range l.runners {
		r.Tick(ctx)
	}
}
