package services

import (
	"context"
	"fmt"
	"log/slog"

	"teamup/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger.With("component", "email")}
}

// SendFeedbackInvite sends the post-event invitation using the "feedback_invite" template.
func (s *emailService) SendFeedbackInvite(ctx context.Context, data *domain.FeedbackInviteEmailData) error {
	if data == nil {
		return fmt.Errorf("feedback invite data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("feedback_invite", data)
	if err != nil {
		return fmt.Errorf("failed to render feedback_invite template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send feedback invite: %w", err)
	}
	s.logger.InfoContext(ctx, "feedback invite sent", "event_id", data.EventID, "to", data.Email)
	return nil
}
