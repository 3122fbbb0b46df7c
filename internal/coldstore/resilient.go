package coldstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/metrics"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

const breakerName = "coldstore"

type ResilientConfig struct {
	// Timeout bounds every single attempt. Zero disables it.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed call.
	Retries int
	// BreakerFailures consecutive failures open the breaker.
	BreakerFailures uint32
	// BreakerOpenFor is how long the breaker stays open before probing again.
	BreakerOpenFor time.Duration
}

func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		Timeout:         3 * time.Second,
		Retries:         1,
		BreakerFailures: 5,
		BreakerOpenFor:  30 * time.Second,
	}
}

// ResilientGateway wraps a Gateway with a per-call timeout, bounded retries and a
// circuit breaker. Every failure it returns wraps domain.ErrColdStoreUnreachable,
// except domain.ErrNotFound which passes through untouched.
type ResilientGateway struct {
	inner   Gateway
	cb      *gobreaker.CircuitBreaker
	cfg     ResilientConfig
	metrics metrics.Collector
	log     *logrus.Logger
}

var _ Gateway = (*ResilientGateway)(nil)

func NewResilientGateway(inner Gateway, cfg ResilientConfig, collector metrics.Collector, log *logrus.Logger) *ResilientGateway {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultResilientConfig().BreakerFailures
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	g := &ResilientGateway{
		inner:   inner,
		cfg:     cfg,
		metrics: collector,
		log:     log,
	}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			g.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("ColdStore.Breaker.StateChange")

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			g.metrics.RecordCircuitState(name, state)
		},
	})
	collector.RecordCircuitState(breakerName, metrics.CircuitClosed)
	return g
}

// IsReachable is false while the breaker is open, without touching the store.
func (g *ResilientGateway) IsReachable(ctx context.Context) bool {
	if g.cb.State() == gobreaker.StateOpen {
		return false
	}
	err := g.call(ctx, "ping", func(ctx context.Context) error {
		if !g.inner.IsReachable(ctx) {
			return domain.ErrColdStoreUnreachable
		}
		return nil
	})
	return err == nil
}

func (g *ResilientGateway) Find(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	var snapshot *domain.Snapshot
	err := g.call(ctx, "find", func(ctx context.Context) error {
		var err error
		snapshot, err = g.inner.Find(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (g *ResilientGateway) List(ctx context.Context, query sqlconfig.AccountQuery) (*ListResult, error) {
	var result *ListResult
	err := g.call(ctx, "list", func(ctx context.Context) error {
		var err error
		result, err = g.inner.List(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *ResilientGateway) Upsert(ctx context.Context, snapshot *domain.Snapshot) error {
	return g.call(ctx, "upsert", func(ctx context.Context) error {
		return g.inner.Upsert(ctx, snapshot)
	})
}

func (g *ResilientGateway) Delete(ctx context.Context, id uuid.UUID) error {
	return g.call(ctx, "delete", func(ctx context.Context) error {
		return g.inner.Delete(ctx, id)
	})
}

func (g *ResilientGateway) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	var err error
	for attempt := 0; attempt <= g.cfg.Retries; attempt++ {
		err = g.attempt(ctx, fn)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			break
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || ctx.Err() != nil {
			break
		}
	}
	g.metrics.RecordColdStoreCall(op, err == nil || errors.Is(err, domain.ErrNotFound), time.Since(start))

	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	g.log.WithError(err).WithField("operation", op).Warn("ColdStore.Call.Failed")
	if errors.Is(err, domain.ErrColdStoreUnreachable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrColdStoreUnreachable, op, err)
}

func (g *ResilientGateway) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := g.cb.Execute(func() (interface{}, error) {
		callCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}
		return nil, fn(callCtx)
	})
	return err
}
