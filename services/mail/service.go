package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/verify/config"
	"github.com/tech-arch1tect/verify/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Service delivers OTP codes and transactional messages over SMTP.
type Service struct {
	config *config.MailConfig
	client *mail.Client
	logger *logging.Service
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("MAIL_HOST is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		if logger != nil {
			logger.Error("failed to create mail client",
				zap.Error(err),
				zap.String("host", cfg.Host),
				zap.Int("port", cfg.Port))
		}
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	if logger != nil {
		logger.Info("mail service initialized",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("encryption", cfg.Encryption),
			zap.String("from_address", cfg.FromAddress))
	}

	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func (s *Service) newMessage(to string) (*mail.Msg, error) {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := message.From(fromAddr); err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}
	if err := message.To(to); err != nil {
		return nil, fmt.Errorf("failed to set TO address: %w", err)
	}

	message.SetGenHeader("X-Verify-Ref", uuid.NewString())

	return message, nil
}

// SendCode delivers an OTP code and its expiry to the recipient.
func (s *Service) SendCode(ctx context.Context, to, code string, expiresAt time.Time) error {
	message, err := s.newMessage(to)
	if err != nil {
		return err
	}

	message.Subject(s.config.OTPSubject)
	message.SetBodyString(mail.TypeTextPlain, buildCodeTextBody(code, expiresAt))
	message.AddAlternativeString(mail.TypeTextHTML, buildCodeHTMLBody(code, expiresAt))

	return s.send(ctx, message, "otp email", to)
}

// SendMessage delivers a transactional message with optional text and HTML
// bodies. At least one body must be present.
func (s *Service) SendMessage(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if strings.TrimSpace(textBody) == "" && strings.TrimSpace(htmlBody) == "" {
		return fmt.Errorf("message requires a text or HTML body")
	}

	message, err := s.newMessage(to)
	if err != nil {
		return err
	}

	message.Subject(subject)

	switch {
	case strings.TrimSpace(textBody) != "" && strings.TrimSpace(htmlBody) != "":
		message.SetBodyString(mail.TypeTextPlain, textBody)
		message.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	case strings.TrimSpace(htmlBody) != "":
		message.SetBodyString(mail.TypeTextHTML, htmlBody)
	default:
		message.SetBodyString(mail.TypeTextPlain, textBody)
	}

	return s.send(ctx, message, "transactional email", to)
}

func (s *Service) send(ctx context.Context, message *mail.Msg, operation, to string) error {
	startTime := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(startTime)

	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send email",
				zap.Error(err),
				zap.String("operation", operation),
				zap.String("recipient", to),
				zap.Duration("attempt_duration", duration))
		}
		return fmt.Errorf("failed to send %s: %w", operation, err)
	}

	if s.logger != nil {
		s.logger.Info("email sent",
			zap.String("operation", operation),
			zap.String("recipient", to),
			zap.Duration("send_duration", duration))
	}
	return nil
}

func buildCodeTextBody(code string, expiresAt time.Time) string {
	local := expiresAt.Local()
	return fmt.Sprintf("Your verification code is %s. It expires at %s on %s.",
		code, local.Format("15:04"), local.Format("2006-01-02"))
}

func buildCodeHTMLBody(code string, expiresAt time.Time) string {
	local := expiresAt.Local()
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;font-size:16px;line-height:1.5">
    <p>Your verification code is:</p>
    <p style="font-size:28px;font-weight:bold;letter-spacing:4px">%s</p>
    <p>This code expires at %s on %s. If you did not request this code, you can safely ignore this email.</p>
</div>`, code, local.Format("15:04"), local.Format("2006-01-02"))
}
