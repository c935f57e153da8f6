package mailclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.uber.org/multierr"
)

type SmtpMailerConfig struct {
	EmailCredential *EmailCredential `validate:"required"`
}

// SmtpMailer keeps one smtp connection and reuse it for the next Send.
type SmtpMailer struct {
	Config *SmtpMailerConfig
	smtp   *smtp.Client
	lock   sync.Mutex
}

var _ Client = (*SmtpMailer)(nil)

// NewSmtp will return new smtp client without any real connection is made.
// It will connect on the first Send.
func NewSmtp(cfg *SmtpMailerConfig) (*SmtpMailer, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("validation error: %w", err)
		return nil, err
	}

	return &SmtpMailer{
		Config: cfg,
	}, nil
}

func (m *SmtpMailer) Send(ctx context.Context, msg Message) (err error) {
	err = validator.Validate(msg)
	if err != nil {
		err = fmt.Errorf("invalid email message: %w", err)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.smtp != nil {
		// NOOP command to check if connection still ok, reconnect if not
		if _err := m.smtp.Noop(); _err != nil {
			_ = m.smtp.Close()
			m.smtp = nil
		}
	}

	if m.smtp == nil {
		m.smtp, err = initClient(ctx, m.Config.EmailCredential)
		if err != nil {
			err = fmt.Errorf("failed to init smtp client: %w", err)
			return
		}
	}

	// RSET command is for aborting already started mail transaction (tools.ietf.org/html/rfc5321#section-4.1.1.5).
	err = m.smtp.Reset()
	if err != nil {
		err = fmt.Errorf("RSET cmd failed: %w", err)
		return
	}

	err = m.smtp.Mail(msg.From, nil)
	if err != nil {
		err = fmt.Errorf("MAIL cmd failed: %w", err)
		return
	}

	for _, to := range msg.To {
		if err = m.smtp.Rcpt(to); err != nil {
			err = fmt.Errorf("error recipient %s: %w", to, err)
			return
		}
	}

	var wc io.WriteCloser
	wc, err = m.smtp.Data()
	if err != nil {
		err = fmt.Errorf("error data writer: %w", err)
		return
	}

	_, err = io.Copy(wc, bytes.NewReader(buildMessage(msg, time.Now())))
	if err != nil {
		err = multierr.Append(fmt.Errorf("error data copy: %w", err), wc.Close())
		return
	}

	err = wc.Close()
	if err != nil {
		err = fmt.Errorf("error data close: %w", err)
		return
	}

	return
}

// Close .
// https://stackoverflow.com/questions/2468851/when-should-i-send-quit-to-smtp-server-and-how-long-should-i-keep-a-session
func (m *SmtpMailer) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.smtp == nil {
		return nil
	}

	c := m.smtp
	m.smtp = nil

	_err := c.Quit()
	if _err == nil {
		return nil
	}

	err := fmt.Errorf("quit command error: %w", _err)
	if _err = c.Close(); _err != nil {
		err = multierr.Append(err, fmt.Errorf("close command error: %w", _err))
	}

	return err
}

// buildMessage writes RFC 5322 message with the minimum headers for plain text utf-8 body.
func buildMessage(msg Message, now time.Time) []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString(fmt.Sprintf("Date: %s\r\n", now.UTC().Format(time.RFC1123Z)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func initClient(ctx context.Context, cred *EmailCredential) (*smtp.Client, error) {
	smtpAddr := net.JoinHostPort(cred.ServerHost, fmt.Sprint(cred.ServerPort))

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", smtpAddr)
	if err != nil {
		err = fmt.Errorf("tcp dial error: %w", err)
		return nil, err
	}

	c, err := smtp.NewClient(conn, cred.ServerHost)
	if err != nil {
		err = multierr.Append(fmt.Errorf("error new smtp client: %w", err), conn.Close())
		return nil, err
	}

	if !cred.DisableStartTLS {
		err = c.StartTLS(&tls.Config{ServerName: cred.ServerHost})
		if err != nil {
			err = multierr.Append(fmt.Errorf("error start tls: %w", err), c.Close())
			return nil, err
		}
	}

	err = c.Auth(sasl.NewPlainClient(cred.AuthIdentity, cred.Username, cred.Password))
	if err != nil {
		err = multierr.Append(fmt.Errorf("error auth: %w", err), c.Close())
		return nil, err
	}

	return c, nil
}
