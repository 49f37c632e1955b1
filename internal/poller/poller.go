package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"futsal-sim-service/internal/logging"
	"futsal-sim-service/internal/metrics"
)

const defaultInterval = 250 * time.Millisecond

// Advancer drives matches forward: the poller asks which matches still need
// simulation and runs one catch-up cycle per match per sweep.
type Advancer interface {
	UnfinishedGameIDs(ctx context.Context) ([]string, error)
	Advance(ctx context.Context, gameID string) error
}

// Poller sweeps every unfinished match on an interval so worlds keep moving
// even when no client is calling. Each sweep runs the same load, catch-up,
// persist cycle as an external call; there is no privileged path.
type Poller struct {
	advancer Advancer
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the sweep loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(advancer Advancer, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		advancer: advancer,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins sweeping until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "simulation sweep started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		p.sweepOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "simulation sweep stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "simulation sweep stopped")
				return
			case <-p.ticker.C:
				p.sweepOnce(ctx)
			}
		}
	}()
}

// Stop halts the sweep loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

// Status returns a copy of the current sweep health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

func (p *Poller) sweepOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)

	ids, err := p.advancer.UnfinishedGameIDs(ctx)
	if err != nil {
		p.metrics.RecordPollerCycle(time.Since(start), err)
		p.recordFailure(err)
		logging.Error(p.logger, "sweep: listing matches failed", err)
		return
	}

	var firstErr error
	advanced := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := p.advancer.Advance(ctx, id); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logging.Warn(p.logger, "sweep: match advance failed",
				slog.String(logging.FieldGameID, id),
				slog.String("error", err.Error()),
			)
			continue
		}
		advanced++
	}

	p.metrics.RecordPollerCycle(time.Since(start), firstErr)
	if firstErr != nil {
		p.recordFailure(firstErr)
		return
	}

	p.recordSuccess(start)
	if advanced > 0 {
		logging.Debug(p.logger, "sweep complete", slog.Int(logging.FieldCount, advanced))
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	p.status.LastError = err.Error()
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}
