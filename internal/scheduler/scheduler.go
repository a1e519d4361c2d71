package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/model"
)

// Runner performs one complete sync run.
type Runner interface {
	Run(ctx context.Context) (model.SyncSummary, error)
}

// Scheduler triggers a Runner on a cron schedule. A tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	expr     string
	schedule cron.Schedule
	runner   Runner
	logger   zerolog.Logger
}

// New parses expr as a standard five-field cron expression or a descriptor
// such as "@daily" or "@every 6h".
//
// Returns ErrInvalidConfig if expr cannot be parsed.
func New(expr string, runner Runner, logger zerolog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: SYNC_SCHEDULE %q: %w", apperrors.ErrInvalidConfig, expr, err)
	}

	return &Scheduler{
		expr:     expr,
		schedule: schedule,
		runner:   runner,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Run blocks until ctx is done, running the sync on every tick.
// On return, any run in progress has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	cronLog := cron.PrintfLogger(printfLogger{s.logger})

	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.tick(ctx) }))

	c.Start()
	s.logger.Info().Time("next_run", s.schedule.Next(time.Now())).Msgf("Running on schedule %q", s.expr)

	<-ctx.Done()

	s.logger.Info().Msg("Stopping, waiting for the current run to finish...")
	<-c.Stop().Done()

	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Sync run failed")
		return
	}

	s.logger.Info().Str("run_id", summary.RunID).Msgf("Sync run persisted %d of %d securities", summary.Persisted, summary.Found)
}

// printfLogger receives cron's error lines; cron.PrintfLogger drops info lines.
type printfLogger struct {
	logger zerolog.Logger
}

func (p printfLogger) Printf(format string, args ...any) {
	p.logger.Error().Msgf(format, args...)
}
