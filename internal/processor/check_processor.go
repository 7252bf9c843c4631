package processor

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository"
	"compliance_checker/internal/rules"
	"compliance_checker/pkg/validator"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MetricsRecorder receives one observation per compliance check.
type MetricsRecorder interface {
	RecordCheck(duration time.Duration, summary domain.Summary, success bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordCheck(time.Duration, domain.Summary, bool) {}

// CheckProcessor runs compliance checks for clients and remembers the latest
// report of each.
type CheckProcessor struct {
	table     *rules.Table
	checkRepo repository.CheckRepository
	validator *validator.ProfileValidator
	metrics   MetricsRecorder
	delay     time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewCheckProcessor(
	table *rules.Table,
	checkRepo repository.CheckRepository,
	metrics MetricsRecorder,
	delay time.Duration,
	logger *slog.Logger,
) *CheckProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}

	return &CheckProcessor{
		table:     table,
		checkRepo: checkRepo,
		validator: validator.NewProfileValidator(),
		metrics:   metrics,
		delay:     delay,
		now:       time.Now,
		logger:    logger,
	}
}

// RunCheck validates the profile, evaluates the rule table and stores the
// report as the client's latest check.
func (p *CheckProcessor) RunCheck(ctx context.Context, clientID string, profile domain.BusinessProfile) (*domain.CheckReport, error) {
	startTime := time.Now()

	if err := p.validator.Validate(profile); err != nil {
		p.metrics.RecordCheck(time.Since(startTime), domain.Summary{}, false)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	matches := Match(p.table, profile.Turnover, profile.Employees)

	report := &domain.CheckReport{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Profile:   profile,
		Summary:   Summarize(matches),
		Matches:   SortByRisk(matches),
		CheckedAt: p.now().UTC(),
	}

	if err := p.checkRepo.SaveLatest(ctx, report); err != nil {
		p.metrics.RecordCheck(time.Since(startTime), report.Summary, false)
		return nil, fmt.Errorf("failed to save check: %w", err)
	}

	p.metrics.RecordCheck(time.Since(startTime), report.Summary, true)
	p.logger.InfoContext(ctx, "Compliance check completed",
		slog.String("check_id", report.ID),
		slog.String("client_id", clientID),
		slog.Int("matches", report.Summary.Total),
		slog.Int("critical", report.Summary.Critical),
		slog.Int("high", report.Summary.High))

	return report, nil
}

// LatestCheck returns the client's most recent report, or the not-performed
// outcome when the client has never run a check.
func (p *CheckProcessor) LatestCheck(ctx context.Context, clientID string) (domain.CheckOutcome, error) {
	report, err := p.checkRepo.GetLatest(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotPerformed(), nil
	}
	if err != nil {
		return domain.CheckOutcome{}, fmt.Errorf("failed to get latest check: %w", err)
	}
	return domain.Performed(report), nil
}

func (p *CheckProcessor) Rules() []domain.ComplianceRule {
	return p.table.Rules()
}

// Rule returns the display projection of a single rule.
func (p *CheckProcessor) Rule(id string) (domain.ComplianceMatch, error) {
	r, err := p.table.Get(id)
	if err != nil {
		return domain.ComplianceMatch{}, fmt.Errorf("%w: %v", repository.ErrNotFound, err)
	}
	return r.Match(), nil
}

func (p *CheckProcessor) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
