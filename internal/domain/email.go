package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// FeedbackInviteEmailData holds data for the post-event feedback invitation.
type FeedbackInviteEmailData struct {
	Email     string
	UserName  string
	EventID   string
	EventName string
	Teammates []string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendFeedbackInvite(ctx context.Context, data *FeedbackInviteEmailData) error
}
