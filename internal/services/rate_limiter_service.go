package services

import (
	"context"
	"fmt"
	"time"

	"github.com/GrupoSemah/salidasform/internal/config"
	"github.com/GrupoSemah/salidasform/internal/repositories"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

// RateLimiterService guards the email dispatcher against duplicate rapid
// submissions. This is pacing, not abuse protection.
type RateLimiterService interface {
	CheckSubmitRateLimits(ctx context.Context, clientIP, email string) error
}

type rateLimiterService struct {
	repo repositories.RateLimitRepository
	cfg  *config.Config
}

func NewRateLimiterService(repo repositories.RateLimitRepository, cfg *config.Config) RateLimiterService {
	return &rateLimiterService{repo: repo, cfg: cfg}
}

// CheckSubmitRateLimits checks the global hourly counter and the per-client /
// per-email cooldown windows for form submissions.
func (s *rateLimiterService) CheckSubmitRateLimits(ctx context.Context, clientIP, email string) error {
	// 1. Global limit
	globalKey := "submit:global"
	allowed, err := s.repo.IncrementAndCheck(ctx, globalKey, s.cfg.GlobalSubmitLimitPerHour, time.Hour)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Global submit rate limit exceeded (key: %s)", globalKey)
		return utils.ErrRateLimitExceeded
	}

	// 2. Per-client cooldown
	ipKey := fmt.Sprintf("submit:ip:%s", clientIP)
	allowed, err = s.repo.IncrementAndCheck(ctx, ipKey, 1, s.cfg.SubmitCooldown)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-client submit cooldown hit (key: %s)", ipKey)
		return utils.ErrRateLimitExceeded
	}

	// 3. Per-email cooldown
	emailKey := fmt.Sprintf("submit:email:%s", email)
	allowed, err = s.repo.IncrementAndCheck(ctx, emailKey, 1, s.cfg.SubmitCooldown)
	if err != nil {
		return err
	}
	if !allowed {
		utils.Logger.Warnf("Per-email submit cooldown hit (key: %s)", emailKey)
		return utils.ErrRateLimitExceeded
	}

	return nil
}
