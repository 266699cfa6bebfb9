package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email sent after signup.
type WelcomeEmailData struct {
	Email     string
	FirstName string
}

// EmailService defines the transactional emails this system sends.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeEmailData) error
}
