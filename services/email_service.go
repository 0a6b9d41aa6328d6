// File: /services/email_service.go
package services

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"io"
	"mycar-api/config"
	"time"
)

// MailSender delivers composed messages; *gomail.Dialer satisfies it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	config *config.Config
	sender MailSender
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return NewEmailServiceWithSender(cfg, dialer)
}

func NewEmailServiceWithSender(cfg *config.Config, sender MailSender) *EmailService {
	return &EmailService{
		config: cfg,
		sender: sender,
	}
}

// SendBackup mails a backup bundle to the user as a JSON attachment.
func (es *EmailService) SendBackup(email, name string, bundle []byte) error {
	fileName := BackupFileName(time.Now())

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "MyCar - Your backup")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>MyCar Backup</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Hello %s!</h2>
        <p>Your vehicles, fuel history and trips are attached as <strong>%s</strong>.</p>
        <p>Import this file from the app to restore everything on a new device.</p>
        <div class="footer">MyCar</div>
    </div>
</body>
</html>`, name, fileName)

	m.SetBody("text/html", htmlBody)
	m.Attach(fileName, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(bundle)
		return err
	}), gomail.SetHeader(map[string][]string{
		"Content-Type": {"application/json"},
	}))

	if err := es.sender.DialAndSend(m); err != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err.Error(),
		}).Error("Failed to send backup email")
		return fmt.Errorf("failed to send backup email: %w", err)
	}

	logrus.WithField("email", email).Info("Backup email sent")
	return nil
}
