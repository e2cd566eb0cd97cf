package notification

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/config"
)

// NewFanOutFromConfig wires the channels that have credentials configured.
func NewFanOutFromConfig(cfg *config.Configuration) *FanOut {
	var (
		mailer    Mailer
		messenger Messenger
	)
	smtpTimeout := time.Duration(cfg.SMTP.TimeoutSec) * time.Second
	if smtpTimeout <= 0 {
		smtpTimeout = DefaultSMTPTimeout
	}
	if m := NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.Recipient,
		WithTimeout(smtpTimeout)); m != nil {
		mailer = m
	} else {
		logrus.Warn("SMTP_HOST not set, order emails are disabled")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	if t := NewTelegramMessenger(cfg.Telegram.BaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, client); t != nil {
		messenger = t
	} else {
		logrus.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, telegram notifications are disabled")
	}
	// a delivery may use the full SMTP timeout before its own budget ends
	return NewFanOut(mailer, messenger, WithChannelTimeout(smtpTimeout+5*time.Second))
}
