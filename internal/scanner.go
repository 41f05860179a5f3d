package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/services/report"
)

type opportunityEvaluator interface {
	Evaluate(ctx context.Context, amount decimal.Decimal, pair domain.Pair) (*domain.Opportunity, error)
	EvaluateChain(ctx context.Context, amount decimal.Decimal, pairs []domain.Pair) (*domain.ChainResult, error)
	EvaluateTriangular(ctx context.Context, venue string) (*domain.TriangleResult, error)
}

type opportunityExecutor interface {
	Execute(ctx context.Context, opp *domain.Opportunity) (*domain.ExecutionResult, error)
}

type alertNotifier interface {
	Notify(ctx context.Context, title, message string)
}

type executionJournal interface {
	Unfinished() ([]domain.Execution, error)
}

// ScannerConfig what to scan and how often.
type ScannerConfig struct {
	Variant          domain.Variant
	Amount           decimal.Decimal
	Pairs            []domain.Pair
	Chains           [][]domain.Pair
	TriangularVenues []string
	Threshold        decimal.Decimal
	ScanOnly         bool
	PollInterval     time.Duration
	TokenDelay       time.Duration
}

// Scanner periodically evaluates the configured variant, reports results and acts on actionable ones.
type Scanner struct {
	cfg     ScannerConfig
	eval    opportunityEvaluator
	exec    opportunityExecutor
	notify  alertNotifier
	journal executionJournal
	out     io.Writer
	logger  *zap.Logger
	now     func() time.Time
}

// NewScanner validates the wiring; exec is required unless ScanOnly is set. notify and journal may be nil.
func NewScanner(cfg ScannerConfig, eval opportunityEvaluator, exec opportunityExecutor, notify alertNotifier, journal executionJournal, logger *zap.Logger) (*Scanner, error) {
	if eval == nil {
		return nil, errors.New("evaluator is required")
	}
	if !cfg.ScanOnly && exec == nil {
		return nil, errors.New("executor is required when scanonly is off")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.Errorf("invalid poll interval %s", cfg.PollInterval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scanner{
		cfg:     cfg,
		eval:    eval,
		exec:    exec,
		notify:  notify,
		journal: journal,
		out:     os.Stdout,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Run scans immediately and then every PollInterval until ctx is done.
func (s *Scanner) Run(ctx context.Context) error {
	s.reportUnfinished(ctx)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.Info("Starting scan loop",
		zap.String("variant", string(s.cfg.Variant)),
		zap.Duration("poll_interval", s.cfg.PollInterval),
		zap.Bool("scan_only", s.cfg.ScanOnly))

	for {
		start := time.Now()
		if err := s.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("scan failed", zap.Error(err))
		}
		s.logger.Debug("scan finished", zap.Duration("took", time.Since(start)))

		select {
		case <-ctx.Done():
			s.logger.Info("Context done, stopping scan loop.")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Scan runs one pass of the configured variant.
func (s *Scanner) Scan(ctx context.Context) error {
	switch s.cfg.Variant {
	case domain.VariantDirect, "":
		return s.scanDirect(ctx)
	case domain.VariantChain:
		return s.scanChains(ctx)
	case domain.VariantTriangular:
		return s.scanTriangular(ctx)
	default:
		return errors.Errorf("unknown variant %q", s.cfg.Variant)
	}
}

func (s *Scanner) scanDirect(ctx context.Context) error {
	for i, pair := range s.cfg.Pairs {
		if i > 0 {
			if err := sleep(ctx, s.cfg.TokenDelay); err != nil {
				return err
			}
		}
		logger := s.logger.With(zap.String("pair", pair.String()))
		logger.Debug("checking opportunity", zap.Int("left", len(s.cfg.Pairs)-i-1))

		opp, err := s.eval.Evaluate(ctx, s.cfg.Amount, pair)
		if err != nil {
			logger.Error("evaluation failed", zap.Error(err))
			continue
		}
		if opp == nil {
			logger.Info("not enough quotes")
			continue
		}
		fmt.Fprintln(s.out, report.Opportunity(opp))

		if !opp.Actionable {
			continue
		}
		logger.Info("actionable opportunity", zap.Stringer("opportunity", opp))
		s.send(ctx, func() (string, string) { return report.OpportunityAlert(opp, s.now()) })

		if s.cfg.ScanOnly {
			continue
		}
		s.execute(ctx, opp)
	}
	return nil
}

func (s *Scanner) execute(ctx context.Context, opp *domain.Opportunity) {
	res, err := s.exec.Execute(ctx, opp)
	if err != nil {
		s.logger.Error("execution failed", zap.String("pair", opp.Pair.String()), zap.Error(err))
	} else {
		s.logger.Info("execution done",
			zap.String("id", res.Execution.ID),
			zap.String("settled", res.Settled.String()),
			zap.String("returned", res.Returned.String()))
	}
	s.send(ctx, func() (string, string) { return report.ExecutionAlert(res, err) })
}

// scanChains reports chains only; legs are not executed.
func (s *Scanner) scanChains(ctx context.Context) error {
	for i, chain := range s.cfg.Chains {
		if i > 0 {
			if err := sleep(ctx, s.cfg.TokenDelay); err != nil {
				return err
			}
		}
		res, err := s.eval.EvaluateChain(ctx, s.cfg.Amount, chain)
		if err != nil {
			s.logger.Error("chain evaluation failed", zap.Int("chain", i), zap.Error(err))
			continue
		}
		if res == nil {
			s.logger.Info("not enough quotes for chain", zap.Int("chain", i))
			continue
		}
		fmt.Fprintln(s.out, report.Chain(res))

		if res.Actionable {
			s.logger.Info("actionable chain", zap.String("profit", res.NetProfit.StringFixed(4)))
			s.send(ctx, func() (string, string) { return report.ChainAlert(res, s.now()) })
		}
	}
	return nil
}

func (s *Scanner) scanTriangular(ctx context.Context) error {
	for _, venue := range s.cfg.TriangularVenues {
		res, err := s.eval.EvaluateTriangular(ctx, venue)
		if err != nil {
			s.logger.Error("triangular evaluation failed", zap.String("exchange", venue), zap.Error(err))
			continue
		}
		if res == nil {
			s.logger.Info("no triangular routes", zap.String("exchange", venue))
			continue
		}
		fmt.Fprintln(s.out, report.Triangle(res))

		if res.Feasible && res.Profit.GreaterThan(s.cfg.Threshold) {
			s.send(ctx, func() (string, string) { return report.TriangleAlert(res, s.now()) })
		}
	}
	return nil
}

func (s *Scanner) send(ctx context.Context, msg func() (string, string)) {
	if s.notify == nil {
		return
	}
	title, body := msg()
	s.notify.Notify(ctx, title, body)
}

// reportUnfinished lists executions a previous run left halted or stuck; they need manual attention.
func (s *Scanner) reportUnfinished(ctx context.Context) {
	if s.journal == nil {
		return
	}
	pending, err := s.journal.Unfinished()
	if err != nil {
		s.logger.Error("failed to read execution journal", zap.Error(err))
		return
	}
	for _, e := range pending {
		s.logger.Warn("unfinished execution",
			zap.String("id", e.ID),
			zap.String("pair", e.Pair),
			zap.String("step", string(e.Step)),
			zap.String("status", string(e.Status)),
			zap.String("error", e.Error))
		res := &domain.ExecutionResult{Execution: e}
		s.send(ctx, func() (string, string) { return report.ExecutionAlert(res, nil) })
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
