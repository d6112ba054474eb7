package services

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailService sends the video-ready notification once composition and
// upload both succeeded. Delivery failure is a secondary warning, never the
// job's primary failure.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// EmailConfig carries the SMTP settings
type EmailConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// NewEmailService creates an email service; it is disabled (Enabled returns
// false) when no SMTP user is configured
func NewEmailService(cfg EmailConfig, log *zap.Logger) *EmailService {
	es := &EmailService{from: cfg.From, log: log}
	if cfg.User != "" {
		es.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	}
	return es
}

// Enabled reports whether mail delivery is configured
func (es *EmailService) Enabled() bool {
	return es.dialer != nil
}

// SendVideoReady notifies the recipient that their video can be downloaded
func (es *EmailService) SendVideoReady(recipient, subjectName, deliveryURL, jobID string) error {
	if !es.Enabled() {
		return fmt.Errorf("mail delivery is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", "🎅 Your Personalized Santa Video is Ready!")
	m.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h1 style="color: #d42c2c; text-align: center;">🎅 Ho Ho Ho!</h1>
			<h2 style="color: #2c5d31;">%s's Santa Video is Ready!</h2>
			<p>Great news! Your personalized Santa video has been created and is ready for download.</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="%s"
					style="background-color: #d42c2c; color: white; padding: 15px 30px;
						text-decoration: none; border-radius: 5px; font-weight: bold;">
					Download Your Video
				</a>
			</div>
			<p><strong>Order ID:</strong> %s</p>
			<p>Your video will be available for download for the next 30 days. Make sure to save it to your device!</p>
			<div style="text-align: center; margin-top: 40px; padding-top: 20px; border-top: 1px solid #eee;">
				<p style="color: #2c5d31; font-weight: bold;">Merry Christmas! 🎄</p>
			</div>
		</div>`, subjectName, deliveryURL, jobID))

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	es.log.Info("video ready email sent",
		zap.String("recipient", recipient),
		zap.String("job_id", jobID))
	return nil
}
