package services

import (
	"context"
	"sync"
	"time"

	"communityhub/internal/logger"

	"go.uber.org/zap"
)

// MaintenanceService 定期清理过期验证码和限流记录
type MaintenanceService struct {
	interval time.Duration
	mu       sync.Mutex
	running  bool
}

// DefaultMaintenanceInterval 清理周期
const DefaultMaintenanceInterval = 10 * time.Minute

func NewMaintenanceService(interval time.Duration) *MaintenanceService {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	return &MaintenanceService{interval: interval}
}

// CleanupResult 一次清理删除的行数
type CleanupResult struct {
	ExpiredOTPs   int64
	OldRateLimits int64
}

// RunOnce 同步执行一次清理
func (s *MaintenanceService) RunOnce() (CleanupResult, error) {
	var res CleanupResult
	var err error
	if res.ExpiredOTPs, err = PurgeExpiredOTPs(); err != nil {
		return res, err
	}
	if res.OldRateLimits, err = CleanupRateLimits(); err != nil {
		return res, err
	}
	return res, nil
}

// Start 启动后台清理，ctx 取消后退出。重复调用无效。
func (s *MaintenanceService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.worker(ctx)
}

func (s *MaintenanceService) worker(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.RunOnce()
			if err != nil {
				logger.Log.Error("Maintenance run failed", zap.Error(err))
				continue
			}
			if res.ExpiredOTPs > 0 || res.OldRateLimits > 0 {
				logger.Log.Info("Maintenance run finished",
					zap.Int64("expired_otps", res.ExpiredOTPs),
					zap.Int64("old_rate_limits", res.OldRateLimits),
				)
			}
		}
	}
}
