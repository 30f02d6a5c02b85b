package otp

import (
	"context"

	"github.com/tech-arch1tect/verify/config"
	"github.com/tech-arch1tect/verify/services/logging"
	"github.com/tech-arch1tect/verify/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideRepository(db *gorm.DB) Repository {
	return NewRepository(db)
}

func ProvideQuotaTracker(cfg *config.Config) *QuotaTracker {
	return NewQuotaTracker(cfg.OTP.DailyLimit)
}

func ProvideNotifier(mailService *mail.Service) Notifier {
	return mailService
}

func ProvideService(repo Repository, notifier Notifier, quota *QuotaTracker, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(repo, notifier, quota, &cfg.OTP, logger)
}

func ProvideReaper(repo Repository, cfg *config.Config, logger *logging.Service) *Reaper {
	return NewReaper(repo, cfg.OTP.CleanupInterval, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideRepository),
	fx.Provide(ProvideQuotaTracker),
	fx.Provide(ProvideNotifier),
	fx.Provide(ProvideService),
	fx.Provide(ProvideReaper),
	fx.Invoke(func(lc fx.Lifecycle, reaper *Reaper) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				reaper.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				reaper.Stop()
				return nil
			},
		})
	}),
)
