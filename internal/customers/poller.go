package customers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

type verificationChecker interface {
	IsVerified(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// Poller watches a customer until their email is verified.
type Poller struct {
	checker verificationChecker
	initial time.Duration
	max     time.Duration
	timeout time.Duration
	logg    *logger.Logger
}

func NewPoller(checker verificationChecker, cfg config.VerificationConfig, logg *logger.Logger) *Poller {
	p := &Poller{
		checker: checker,
		initial: cfg.PollInitialInterval,
		max:     cfg.PollMaxInterval,
		timeout: cfg.PollTimeout,
		logg:    logg,
	}
	if p.initial <= 0 {
		p.initial = time.Second
	}
	if p.max < p.initial {
		p.max = p.initial
	}
	return p
}

// Watch is one running poll. It ends on verification, Stop, context cancellation,
// timeout, or a non-retryable check error.
type Watch struct {
	done     chan struct{}
	cancel   context.CancelFunc
	verified atomic.Bool

	mu  sync.Mutex
	err error
}

func (w *Watch) Done() <-chan struct{} {
	return w.done
}

func (w *Watch) Verified() bool {
	return w.verified.Load()
}

// Err returns the check error that ended the watch, if any.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Stop cancels the watch and waits for it to end. onVerified never runs after Stop
// returns, so it must not call Stop itself.
func (w *Watch) Stop() {
	w.cancel()
	<-w.done
}

// Start begins polling with exponential backoff. onVerified may be nil.
func (p *Poller) Start(ctx context.Context, customerID uuid.UUID, onVerified func()) *Watch {
	var cancel context.CancelFunc
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	w := &Watch{done: make(chan struct{}), cancel: cancel}
	go p.run(ctx, w, customerID, onVerified)
	return w
}

func (p *Poller) run(ctx context.Context, w *Watch, customerID uuid.UUID, onVerified func()) {
	defer close(w.done)
	defer w.cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial
	b.MaxInterval = p.max

	for {
		ok, err := p.checker.IsVerified(ctx, customerID)
		if ctx.Err() != nil {
			return
		}
		if err == nil && ok {
			w.verified.Store(true)
			if onVerified != nil {
				onVerified()
			}
			return
		}
		if err != nil {
			if !pkgerrors.IsRetryable(err) {
				w.mu.Lock()
				w.err = err
				w.mu.Unlock()
				return
			}
			if p.logg != nil {
				p.logg.WarnErr(p.logg.WithCustomerID(ctx, customerID.String()), "customers.poll_check_failed", err)
			}
		}

		sleep := b.NextBackOff()
		if sleep == backoff.Stop {
			sleep = p.max
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
