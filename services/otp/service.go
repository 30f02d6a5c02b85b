package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tech-arch1tect/verify/config"
	"github.com/tech-arch1tect/verify/services/logging"
	"go.uber.org/zap"
)

// Kind tags every record issued by this service. The store enforces known
// OTP scenarios; the existing "register" bucket is reused.
const Kind = "register"

var (
	ErrEmailQuotaExceeded  = fmt.Errorf("%w: daily OTP limit reached for this email, please try again tomorrow", ErrQuotaExceeded)
	ErrDeviceQuotaExceeded = fmt.Errorf("%w: daily OTP limit reached for this device, please try again tomorrow", ErrQuotaExceeded)
	ErrDeliveryFailed      = errors.New("failed to deliver OTP email")
)

// IsRateLimited reports whether err is a daily-quota rejection, so callers
// can map it to different retry guidance than a delivery failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// Notifier delivers a plaintext code to a recipient out of band.
type Notifier interface {
	SendCode(ctx context.Context, to, code string, expiresAt time.Time) error
}

// Service orchestrates code generation, quota reservation, persistence and
// delivery. It owns no persistent state itself.
type Service struct {
	repo     Repository
	notifier Notifier
	quota    *QuotaTracker
	logger   *logging.Service
	lifetime time.Duration
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, quota *QuotaTracker, cfg *config.OTPConfig, logger *logging.Service) *Service {
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}

	return &Service{
		repo:     repo,
		notifier: notifier,
		quota:    quota,
		logger:   logger,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// SendOtp issues a code to email and returns its expiry. Quota is reserved
// before the record exists and committed only after delivery succeeds; every
// failure path releases the reservations and removes the pending record, so
// a failed send never consumes one of the caller's daily attempts.
func (s *Service) SendOtp(ctx context.Context, email, requestIP, userAgent string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	now := s.now().UTC()
	normalizedEmail := strings.TrimSpace(email)

	// Opportunistic housekeeping; the reaper remains authoritative.
	if err := s.repo.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn("failed to purge expired otp records before send", zap.Error(err))
	}

	emailReservation, err := s.quota.Reserve(ScopeEmail, strings.ToLower(normalizedEmail), now)
	if err != nil {
		return time.Time{}, ErrEmailQuotaExceeded
	}
	defer emailReservation.Release()

	var deviceReservation *Reservation
	if signature, ok := DeviceSignature(requestIP, userAgent); ok {
		deviceReservation, err = s.quota.Reserve(ScopeDevice, signature, now)
		if err != nil {
			return time.Time{}, ErrDeviceQuotaExceeded
		}
		defer deviceReservation.Release()
	}

	code, err := GenerateCode()
	if err != nil {
		return time.Time{}, err
	}

	expiresAt := now.Add(s.lifetime)
	recordID, err := s.repo.Insert(ctx, normalizedEmail, HashCode(code), Kind, expiresAt, requestIP, userAgent)
	if err != nil {
		return time.Time{}, err
	}

	if err := s.notifier.SendCode(ctx, normalizedEmail, code, expiresAt); err != nil {
		// Never mask the delivery error with a cleanup failure.
		if cleanupErr := s.repo.Delete(context.WithoutCancel(ctx), recordID); cleanupErr != nil {
			s.logger.Warn("failed to clean up otp record after send failure",
				zap.Uint("record_id", recordID),
				zap.Error(cleanupErr))
		}
		return time.Time{}, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	emailReservation.Commit()
	if deviceReservation != nil {
		deviceReservation.Commit()
	}

	s.logger.Info("otp generated",
		zap.String("email", normalizedEmail),
		zap.Time("expires_at", expiresAt))

	return expiresAt, nil
}

// VerifyOtp checks the submitted code against the latest active record for
// email. Invalid outcomes are returned as values; only storage failures
// surface as errors.
func (s *Service) VerifyOtp(ctx context.Context, email, code string) (VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return VerificationResult{}, err
	}

	normalizedEmail := strings.TrimSpace(email)
	normalizedCode := strings.TrimSpace(code)

	record, err := s.repo.GetLatestActive(ctx, normalizedEmail, Kind)
	if err != nil {
		return VerificationResult{}, err
	}
	if record == nil {
		return InvalidResult("OTP has expired or was not requested."), nil
	}

	now := s.now().UTC()
	if !record.ExpiresAt.After(now) {
		// Lazily finalize instead of waiting for the background sweep.
		if err := s.repo.MarkUsed(ctx, record.ID, now); err != nil {
			return VerificationResult{}, err
		}
		s.logger.Info("otp expired",
			zap.String("email", normalizedEmail),
			zap.Time("expired_at", record.ExpiresAt))
		return InvalidResult("OTP has expired."), nil
	}

	if !hashesEqual(record.CodeHash, HashCode(normalizedCode)) {
		if err := s.repo.IncrementAttempts(ctx, record.ID); err != nil {
			return VerificationResult{}, err
		}
		s.logger.Warn("otp mismatch", zap.String("email", normalizedEmail))
		return InvalidResult("OTP is incorrect."), nil
	}

	if err := s.repo.Delete(ctx, record.ID); err != nil {
		return VerificationResult{}, err
	}

	// Stale duplicates from races or prior partial failures; cleanup failure
	// does not change the outcome.
	if err := s.repo.DeleteAll(context.WithoutCancel(ctx), normalizedEmail, Kind); err != nil {
		s.logger.Warn("failed to remove otp records after successful verification",
			zap.String("email", normalizedEmail),
			zap.Error(err))
	}

	s.logger.Info("otp verified", zap.String("email", normalizedEmail))
	return ValidResult(), nil
}
