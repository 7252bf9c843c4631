package memory

import (
	"compliance_checker/internal/repository"
)

var (
	_ repository.SessionRepository = (*SessionRepository)(nil)
	_ repository.CheckRepository   = (*CheckRepository)(nil)
	_ repository.ChallengeStore    = (*ChallengeStore)(nil)
)
