// Copyright 2024 The sramrig Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logsink

import (
	"crypto/tls"
	"fmt"

	mail "gopkg.in/gomail.v2"
)

// Mailer sends one transactional email per event, in the same
// insecure-TLS-dial style this platform's predecessor alerting used.
type Mailer struct {
	from, subject string
	to            []string
	dial          *mail.Dialer
}

// NewMailer configures SMTP delivery through host:port with user/pass
// credentials, sending every event as "from" to every address in to.
func NewMailer(host string, port int, user, pass, from, subject string, to []string) *Mailer {
	dial := mail.NewDialer(host, port, user, pass)
	dial.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	return &Mailer{from: from, subject: subject, to: to, dial: dial}
}

func (m *Mailer) Emit(e Event) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", fmt.Sprintf("%s: %s [%s]", m.subject, e.SourceName, e.Level))
	msg.SetBody("text/plain", fmt.Sprintf("status: %s\nlevel: %s\nsource: %s\ntime: %s\nmsg: %v",
		e.Status, e.Level, e.SourceName, e.Timestamp, e.Msg,
	))

	if err := m.dial.DialAndSend(msg); err != nil {
		return fmt.Errorf("logsink: could not send mail alert: %w", err)
	}
	return nil
}
