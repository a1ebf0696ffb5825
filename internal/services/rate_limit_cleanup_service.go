package services

import (
	"context"

	"github.com/GrupoSemah/salidasform/internal/repositories"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

// RateLimitCleanupService removes expired rate limit counter keys.
type RateLimitCleanupService interface {
	Cleanup(ctx context.Context) error
}

type rateLimitCleanupService struct {
	repo repositories.RateLimitRepository
}

func NewRateLimitCleanupService(repo repositories.RateLimitRepository) RateLimitCleanupService {
	return &rateLimitCleanupService{repo: repo}
}

// Cleanup removes expired rate limit keys and logs any errors.
func (s *rateLimitCleanupService) Cleanup(ctx context.Context) error {
	if err := s.repo.CleanupExpired(ctx); err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired rate limit counters")
		return err
	}

	utils.Logger.Debug("Rate limit counter cleanup completed")
	return nil
}
