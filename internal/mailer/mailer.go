package mailer

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/Alex-Easy/diploma-try-2/config"
)

// Event topics published by the HTTP layer and consumed here.
const (
	TopicUserRegistered    = "user.registered"
	TopicUserPasswordReset = "user.password_reset"
	TopicOrderCreated      = "order.created"
)

// SettingsProvider exposes the runtime settings the mailer consults.
type SettingsProvider interface {
	GetSettingsBoolValue(category, key string) bool
}

// Mailer delivers the transactional mails of the account and order flows over
// SMTP. When disabled it only logs, which keeps development setups working
// without a relay. Delivery can be toggled at runtime via the smtp.enabled
// setting without a restart.
type Mailer struct {
	cfg      config.SmtpConfig
	settings SettingsProvider
}

func New(cfg config.SmtpConfig, settings SettingsProvider) *Mailer {
	return &Mailer{cfg: cfg, settings: settings}
}

// Subscribe attaches the mail handlers to the event bus. Delivery runs
// asynchronously so requests never wait on the SMTP relay.
func (m *Mailer) Subscribe(bus EventBus.Bus) error {
	if err := bus.SubscribeAsync(TopicUserRegistered, m.onUserRegistered, false); err != nil {
		return err
	}
	if err := bus.SubscribeAsync(TopicUserPasswordReset, m.onPasswordReset, false); err != nil {
		return err
	}
	return bus.SubscribeAsync(TopicOrderCreated, m.onOrderCreated, false)
}

func (m *Mailer) onUserRegistered(email, token string) {
	body := fmt.Sprintf("Welcome!\n\nYour email verification token: %s\n", token)
	m.send(email, "Confirm your registration", body)
}

func (m *Mailer) onPasswordReset(email, token string) {
	body := fmt.Sprintf("Your password reset token: %s\n\nIf you did not request a reset, ignore this mail.\n", token)
	m.send(email, "Password reset", body)
}

func (m *Mailer) onOrderCreated(email string, orderID int64) {
	if m.settings != nil && !m.settings.GetSettingsBoolValue("orders", "notify") {
		return
	}
	body := fmt.Sprintf("Thank you!\n\nYour order #%d has been created and is being processed.\n", orderID)
	m.send(email, fmt.Sprintf("Order #%d created", orderID), body)
}

func (m *Mailer) enabled() bool {
	if m.cfg.Enabled {
		return true
	}
	return m.settings != nil && m.settings.GetSettingsBoolValue("smtp", "enabled")
}

func (m *Mailer) send(to, subject, body string) {
	if !m.enabled() {
		zap.L().Debug("smtp disabled, mail skipped",
			zap.String("to", to),
			zap.String("subject", subject))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		zap.L().Error("mail delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	zap.L().Info("mail sent", zap.String("to", to), zap.String("subject", subject))
}
