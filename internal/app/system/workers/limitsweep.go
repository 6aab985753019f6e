// internal/app/system/workers/limitsweep.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweepable drops idle state and reports how much it removed.
type Sweepable interface {
	Sweep() int
}

// LimitSweep is a background worker that prunes idle rate-limit buckets.
type LimitSweep struct {
	target   Sweepable
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLimitSweep creates a worker that calls target.Sweep every interval.
func NewLimitSweep(target Sweepable, logger *zap.Logger, interval time.Duration) *LimitSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &LimitSweep{
		target:   target,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *LimitSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("rate limit sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *LimitSweep) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("rate limit sweep worker stopped")
	})
}

func (w *LimitSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if n := w.target.Sweep(); n > 0 {
				w.log.Debug("pruned idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}
