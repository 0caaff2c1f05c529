package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. A Mailer built without an SMTP
// host is disabled and silently drops everything, so local development works
// without a mail server.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{from: from}
	if host != "" {
		m.dialer = gomail.NewDialer(host, port, username, password)
	}
	return m
}

func (m *Mailer) Enabled() bool { return m.dialer != nil }

func (m *Mailer) send(to, subject, body string) error {
	if m.dialer == nil {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"<h2>Welcome to StudentMart, %s!</h2><p>Your account is ready. Browse listings from students on your campus or put your own things up for sale.</p>",
		name,
	)
	return m.send(to, "Welcome to StudentMart", body)
}

func (m *Mailer) SendOrderConfirmation(to, name, orderID string, total float64) error {
	body := fmt.Sprintf(
		"<h2>Order confirmed</h2><p>Hi %s, your payment for order <b>%s</b> (₦%.2f) was received. The vendor has been notified.</p>",
		name, orderID, total,
	)
	return m.send(to, "Your StudentMart order is confirmed", body)
}
