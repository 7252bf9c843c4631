package memory

import (
	"compliance_checker/internal/domain"
	"context"
	"fmt"
	"sync"
)

type SessionRepository struct {
	mu     sync.RWMutex
	states map[string]domain.SessionState
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		states: make(map[string]domain.SessionState),
	}
}

func (r *SessionRepository) GetState(ctx context.Context, clientID string) (domain.SessionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, exists := r.states[clientID]
	if !exists {
		return domain.SessionUnset, nil
	}
	return state, nil
}

func (r *SessionRepository) SetState(ctx context.Context, clientID string, state domain.SessionState) error {
	if _, err := domain.ParseSessionState(string(state)); err != nil {
		return fmt.Errorf("client %s: %w", clientID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if state == domain.SessionUnset {
		delete(r.states, clientID)
		return nil
	}
	r.states[clientID] = state
	return nil
}
