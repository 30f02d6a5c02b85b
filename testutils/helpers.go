package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/verify/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T, models ...any) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		err = db.AutoMigrate(models...)
		require.NoError(t, err)
	}

	return db
}

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "verify",
			URL:  "http://localhost:8080",
		},
		OTP: config.OTPConfig{
			DailyLimit:      5,
			Lifetime:        5 * time.Minute,
			CleanupInterval: time.Hour,
		},
	}
}
