package scheduler

import (
	"context"
	"time"

	obscontext "github.com/smallbiznis/voltshop/internal/observability/context"
	obslogger "github.com/smallbiznis/voltshop/internal/observability/logger"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sweepRun tracks one pass over pending confirmations. Its id doubles as the
// correlation id of every email and event the pass produces.
type sweepRun struct {
	job       string
	id        string
	batchSize int
	startedAt time.Time
	result    orderdomain.SweepResult
	failed    bool
}

func (s *Scheduler) beginRun(ctx context.Context, job string, batchSize int) (context.Context, *sweepRun) {
	run := &sweepRun{
		job:       job,
		id:        s.genID.Generate().String(),
		batchSize: batchSize,
		startedAt: s.clock.Now(),
	}
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	ctx = obscontext.WithCorrelationID(ctx, run.id)

	s.logger(ctx).Info("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.id),
		zap.Int("batch_size", run.batchSize),
	)
	return ctx, run
}

func (s *Scheduler) endRun(ctx context.Context, run *sweepRun) {
	level := zapcore.InfoLevel
	if run.failed || run.result.Failed > 0 {
		level = zapcore.WarnLevel
	}
	if ce := s.logger(ctx).Check(level, "scheduler.job.finish"); ce != nil {
		ce.Write(
			zap.String("job", run.job),
			zap.String("run_id", run.id),
			zap.Duration("duration", s.clock.Now().Sub(run.startedAt)),
			zap.Int("attempted", run.result.Attempted),
			zap.Int("sent", run.result.Sent),
			zap.Int("failed", run.result.Failed),
			zap.Bool("aborted", run.failed),
		)
	}
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}
