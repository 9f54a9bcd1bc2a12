package notification

import (
	"context"
	"crypto/tls"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:generate mockgen -source=notification_mailer.go -destination=mock/notification_mailer_mock.go -package=mock
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) Mailer {
	d := gomail.NewDialer(host, port, user, password)
	d.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	return &smtpMailer{dialer: d, from: from}
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

type logMailer struct {
	logger *zap.Logger
}

// NewLogMailer is used when SMTP is not configured; it only records what
// would have been sent.
func NewLogMailer(logger ...*zap.Logger) Mailer {
	l := zap.L().Named("notification.mailer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.mailer")
	}
	return &logMailer{logger: l}
}

func (m *logMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.logger.Info("smtp disabled, e-mail skipped", zap.String("to", to), zap.String("subject", subject))
	return nil
}
