package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/verify/config"
)

func TestNewService(t *testing.T) {
	t.Run("fails fast without a host", func(t *testing.T) {
		_, err := NewService(&config.MailConfig{
			FromAddress: "noreply@example.com",
		}, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAIL_HOST")
	})

	t.Run("fails fast without a sender identity", func(t *testing.T) {
		_, err := NewService(&config.MailConfig{
			Host: "smtp.example.com",
		}, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAIL_FROM_ADDRESS")
	})

	t.Run("builds a client with a valid config", func(t *testing.T) {
		service, err := NewService(&config.MailConfig{
			Host:        "smtp.example.com",
			Port:        587,
			Encryption:  "starttls",
			FromAddress: "noreply@example.com",
			FromName:    "OTP Service",
			OTPSubject:  "Your verification code",
		}, nil)

		require.NoError(t, err)
		assert.NotNil(t, service)
	})
}

func TestCodeBodies(t *testing.T) {
	expiresAt := time.Date(2026, 3, 14, 10, 5, 0, 0, time.UTC)

	t.Run("text body includes the code", func(t *testing.T) {
		body := buildCodeTextBody("123456", expiresAt)
		assert.Contains(t, body, "123456")
		assert.Contains(t, body, "expires")
	})

	t.Run("html body includes the code", func(t *testing.T) {
		body := buildCodeHTMLBody("123456", expiresAt)
		assert.Contains(t, body, "123456")
		assert.Contains(t, body, "ignore this email")
	})
}

func TestNewMessage(t *testing.T) {
	service, err := NewService(&config.MailConfig{
		Host:        "smtp.example.com",
		FromAddress: "noreply@example.com",
		FromName:    "OTP Service",
	}, nil)
	require.NoError(t, err)

	t.Run("sets sender and recipient", func(t *testing.T) {
		message, err := service.newMessage("user@example.com")
		require.NoError(t, err)
		assert.NotNil(t, message)
	})

	t.Run("rejects an invalid recipient", func(t *testing.T) {
		_, err := service.newMessage("not an address")
		require.Error(t, err)
	})
}
