package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaTracker_Reserve(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("allows reservations up to the daily limit", func(t *testing.T) {
		tracker := NewQuotaTracker(3)

		for i := 0; i < 3; i++ {
			reservation, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
			require.NoError(t, err)
			reservation.Commit()
		}

		_, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("release restores the counter", func(t *testing.T) {
		tracker := NewQuotaTracker(1)

		reservation, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		reservation.Release()

		_, err = tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
	})

	t.Run("release after commit is a no-op", func(t *testing.T) {
		tracker := NewQuotaTracker(1)

		reservation, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		reservation.Commit()
		reservation.Release()

		_, err = tracker.Reserve(ScopeEmail, "a@x.com", now)
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("release is idempotent", func(t *testing.T) {
		tracker := NewQuotaTracker(2)

		first, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		second, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		second.Commit()

		first.Release()
		first.Release()

		// Only one slot should be free again.
		_, err = tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		_, err = tracker.Reserve(ScopeEmail, "a@x.com", now)
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("counter resets after UTC midnight", func(t *testing.T) {
		tracker := NewQuotaTracker(1)

		reservation, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		reservation.Commit()

		_, err = tracker.Reserve(ScopeEmail, "a@x.com", now)
		assert.ErrorIs(t, err, ErrQuotaExceeded)

		nextDay := time.Date(2026, 3, 15, 0, 0, 1, 0, time.UTC)
		reservation, err = tracker.Reserve(ScopeEmail, "a@x.com", nextDay)
		require.NoError(t, err)
		reservation.Commit()
	})

	t.Run("scopes and keys are independent", func(t *testing.T) {
		tracker := NewQuotaTracker(1)

		reservation, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		reservation.Commit()

		reservation, err = tracker.Reserve(ScopeEmail, "b@x.com", now)
		require.NoError(t, err)
		reservation.Commit()

		reservation, err = tracker.Reserve(ScopeDevice, "a@x.com", now)
		require.NoError(t, err)
		reservation.Commit()
	})

	t.Run("expired entries are evicted", func(t *testing.T) {
		tracker := NewQuotaTracker(1)

		reservation, err := tracker.Reserve(ScopeEmail, "a@x.com", now)
		require.NoError(t, err)
		reservation.Commit()

		nextDay := now.AddDate(0, 0, 1)
		_, err = tracker.Reserve(ScopeEmail, "b@x.com", nextDay)
		require.NoError(t, err)

		tracker.mu.Lock()
		defer tracker.mu.Unlock()
		assert.Len(t, tracker.entries, 1)
	})
}

func TestDeviceSignature(t *testing.T) {
	t.Run("absent origin and agent produces no signature", func(t *testing.T) {
		_, ok := DeviceSignature("", "")
		assert.False(t, ok)

		_, ok = DeviceSignature("   ", "  ")
		assert.False(t, ok)
	})

	t.Run("signature is derived from both halves", func(t *testing.T) {
		sig1, ok := DeviceSignature("10.0.0.1", "curl/8.0")
		require.True(t, ok)
		sig2, ok := DeviceSignature("10.0.0.1", "curl/8.1")
		require.True(t, ok)

		assert.NotEqual(t, sig1, sig2)
	})

	t.Run("missing half uses a fixed placeholder", func(t *testing.T) {
		ipOnly, ok := DeviceSignature("10.0.0.1", "")
		require.True(t, ok)
		agentOnly, ok := DeviceSignature("", "curl/8.0")
		require.True(t, ok)

		assert.NotEqual(t, ipOnly, agentOnly)
		assert.NotContains(t, ipOnly, "10.0.0.1")
	})

	t.Run("values are trimmed before hashing", func(t *testing.T) {
		sig1, _ := DeviceSignature(" 10.0.0.1 ", " curl/8.0 ")
		sig2, _ := DeviceSignature("10.0.0.1", "curl/8.0")
		assert.Equal(t, sig1, sig2)
	})
}
