package services

import (
	"context"
	"fmt"
	"log/slog"

	"sponsorhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendVerificationCode sends the email-verification code using the "verification_code" template.
func (s *emailService) SendVerificationCode(ctx context.Context, data *domain.VerificationCodeEmailData) error {
	if data == nil {
		return fmt.Errorf("verification code email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("verification_code", data)
	if err != nil {
		return fmt.Errorf("failed to render verification_code template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send verification code email: %w", err)
	}
	s.logger.Info("verification code email sent", "email", data.Email)
	return nil
}
