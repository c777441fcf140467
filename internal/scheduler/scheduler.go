package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/clock"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SweepLockKey keeps one confirmation sweep running across every instance.
const SweepLockKey = "voltshop:sweep:confirmations"

const jobConfirmationSweep = "confirmation_sweep"

const (
	runResultOK     = "ok"
	runResultLocked = "locked"
	runResultError  = "error"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

// Locker is satisfied by ratelimit.Locker. A nil Locker always grants.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Params struct {
	fx.In

	Log         *zap.Logger
	OrderSvc    orderdomain.Service
	GenID       *snowflake.Node
	Clock       clock.Clock
	Locker      Locker                         `optional:"true"`
	Fulfillment *obsmetrics.FulfillmentMetrics `optional:"true"`
	Config      Config                         `optional:"true"`
}

type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	genID       *snowflake.Node
	clock       clock.Clock
	orderSvc    orderdomain.Service
	locker      Locker
	fulfillment *obsmetrics.FulfillmentMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.OrderSvc == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		genID:       p.GenID,
		clock:       p.Clock,
		orderSvc:    p.OrderSvc,
		locker:      p.Locker,
		fulfillment: p.Fulfillment,
	}, nil
}

// RunOnce re-sends confirmations for paid orders that were never stamped as
// sent. It is a no-op when another instance holds the sweep lock.
func (s *Scheduler) RunOnce(parent context.Context) (orderdomain.SweepResult, error) {
	var result orderdomain.SweepResult

	token, acquired, err := s.tryLock(parent)
	if err != nil {
		s.fulfillment.IncSweepRun(runResultError)
		return result, fmt.Errorf("%s: acquire lock: %w", jobConfirmationSweep, err)
	}
	if !acquired {
		s.fulfillment.IncSweepRun(runResultLocked)
		s.log.Debug("confirmation sweep skipped, lock held elsewhere")
		return result, nil
	}
	defer func() {
		// Release on a fresh context so a cancelled parent still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.releaseLock(releaseCtx, token); err != nil {
			s.log.Warn("confirmation sweep lock release failed", zap.Error(err))
		}
	}()

	err = s.runJob(parent, jobConfirmationSweep, s.cfg.BatchSize, s.cfg.JobTimeout, func(ctx context.Context, run *sweepRun) error {
		swept, err := s.orderSvc.ResendPendingConfirmations(ctx, s.cfg.BatchSize)
		result = swept
		run.result = swept
		return err
	})
	if err != nil {
		s.fulfillment.IncSweepRun(runResultError)
		return result, err
	}
	s.fulfillment.IncSweepRun(runResultOK)
	return result, nil
}

// RunForever sweeps on every tick until ctx is done.
func (s *Scheduler) RunForever(ctx context.Context) {
	if s.cfg.RunInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context, run *sweepRun) error,
) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run := s.beginRun(ctx, name, batchSize)
	err := fn(ctx, run)
	run.failed = err != nil
	s.endRun(ctx, run)
	if err == nil {
		return nil
	}

	// A timed out sweep resumes on the next tick.
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.String("run_id", run.id),
			zap.Duration("timeout", timeout),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) tryLock(ctx context.Context) (string, bool, error) {
	if s.locker == nil {
		return "", true, nil
	}
	return s.locker.TryLock(ctx, SweepLockKey, s.cfg.LockTTL)
}

func (s *Scheduler) releaseLock(ctx context.Context, token string) error {
	if s.locker == nil || token == "" {
		return nil
	}
	return s.locker.Release(ctx, SweepLockKey, token)
}
