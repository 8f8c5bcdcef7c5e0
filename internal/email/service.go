package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/uptask-dev/uptask/internal/logging"
)

// Service delivers transactional mail over SMTP. Messages carry both a
// plain-text and an HTML body.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromAddress  string
	frontendURL  string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromAddress, frontendURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromAddress:  fromAddress,
		frontendURL:  frontendURL,
	}
}

type codeEmailData struct {
	Name string
	Code string
	Link string
}

// SendConfirmationEmail mails the 6-digit account confirmation code.
// Designed to be called in a goroutine; delivery is not awaited by callers.
func (s *Service) SendConfirmationEmail(ctx context.Context, toEmail, name, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	data := codeEmailData{
		Name: name,
		Code: code,
		Link: fmt.Sprintf("%s/auth/confirm-account", s.frontendURL),
	}

	subject := "UpTask - Confirm your account"
	text := fmt.Sprintf(
		"Hi %s, confirm your UpTask account at %s using the code %s. The code expires in 10 minutes.",
		data.Name, data.Link, data.Code,
	)
	html, err := renderTemplate(confirmationTemplate, data)
	if err != nil {
		logger.Error("failed to render confirmation email", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(toEmail, subject, text, html); err != nil {
		logger.Error("failed to send confirmation email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("confirmation email sent", "email", toEmail)
	return nil
}

// SendPasswordResetEmail mails the 6-digit password reset code.
// Designed to be called in a goroutine; delivery is not awaited by callers.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, name, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	data := codeEmailData{
		Name: name,
		Code: code,
		Link: fmt.Sprintf("%s/auth/new-password", s.frontendURL),
	}

	subject := "UpTask - Reset your password"
	text := fmt.Sprintf(
		"Hi %s, reset your UpTask password at %s using the code %s. The code expires in 10 minutes.",
		data.Name, data.Link, data.Code,
	)
	html, err := renderTemplate(passwordResetTemplate, data)
	if err != nil {
		logger.Error("failed to render password reset email", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(toEmail, subject, text, html); err != nil {
		logger.Error("failed to send password reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) send(to, subject, textBody, htmlBody string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	const boundary = "uptask-alt-boundary"
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: multipart/alternative; boundary=%q\r\n"+
			"\r\n"+
			"--%s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n"+
			"--%s\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n"+
			"--%s--\r\n",
		s.fromAddress, to, subject, boundary,
		boundary, textBody,
		boundary, htmlBody,
		boundary,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.smtpUser, []string{to}, msg)
}

func renderTemplate(tmpl string, data codeEmailData) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

const confirmationTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #4F46E5; color: white; padding: 20px; text-align: center;">
        <h1>Welcome to UpTask!</h1>
    </div>
    <div style="background-color: #f9f9f9; padding: 30px;">
        <h2>Confirm your account</h2>
        <p>Hi {{.Name}}, your UpTask account is almost ready. Visit the link below and enter your confirmation code.</p>
        <p><a href="{{.Link}}" style="color: #4F46E5;">Confirm account</a></p>
        <p>Your code: <b style="font-size: 20px;">{{.Code}}</b></p>
        <p>This code expires in 10 minutes.</p>
        <p style="margin-top: 30px;">If you didn't create an account, you can safely ignore this email.</p>
    </div>
</body>
</html>
`

const passwordResetTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #4F46E5; color: white; padding: 20px; text-align: center;">
        <h1>Password Reset</h1>
    </div>
    <div style="background-color: #f9f9f9; padding: 30px;">
        <h2>Reset your password</h2>
        <p>Hi {{.Name}}, you asked to reset your UpTask password. Visit the link below and enter your reset code to choose a new one.</p>
        <p><a href="{{.Link}}" style="color: #4F46E5;">Reset password</a></p>
        <p>Your code: <b style="font-size: 20px;">{{.Code}}</b></p>
        <p>This code expires in 10 minutes.</p>
        <p style="margin-top: 30px;">If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
    </div>
</body>
</html>
`
