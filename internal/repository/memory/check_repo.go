package memory

import (
	"compliance_checker/internal/domain"
	"compliance_checker/internal/repository"
	"context"
	"fmt"
	"slices"
	"sync"
)

type CheckRepository struct {
	mu     sync.RWMutex
	latest map[string]*domain.CheckReport
}

func NewCheckRepository() *CheckRepository {
	return &CheckRepository{
		latest: make(map[string]*domain.CheckReport),
	}
}

func (r *CheckRepository) SaveLatest(ctx context.Context, report *domain.CheckReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest[report.ClientID] = cloneReport(report)
	return nil
}

func (r *CheckRepository) GetLatest(ctx context.Context, clientID string) (*domain.CheckReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, exists := r.latest[clientID]
	if !exists {
		return nil, fmt.Errorf("%w: check for client %s", repository.ErrNotFound, clientID)
	}
	return cloneReport(report), nil
}

// Reports are copied in and out so callers cannot mutate stored matches.
func cloneReport(report *domain.CheckReport) *domain.CheckReport {
	c := *report
	c.Matches = slices.Clone(report.Matches)
	if c.Matches == nil {
		c.Matches = []domain.ComplianceMatch{}
	}
	return &c
}
