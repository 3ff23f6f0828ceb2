package smtpingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/autou/mail-triage/internal/config"
	"github.com/autou/mail-triage/internal/core"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// Ingest is an SMTP proxy that classifies inbound mail, stamps the
// result into headers and re-injects the message downstream. Mail is
// never rejected on classification grounds; triage annotates, the
// downstream MTA decides.
type Ingest struct {
	service *core.TriageService
	cfg     config.SMTPConfig
	server  *smtp.Server
	logger  *zap.Logger
}

// New creates the SMTP ingest server
func New(service *core.TriageService, cfg config.SMTPConfig, logger *zap.Logger) *Ingest {
	return &Ingest{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the SMTP server
func (in *Ingest) Start() error {
	in.server = smtp.NewServer(&smtpBackend{ingest: in})

	in.server.Addr = in.cfg.ListenAddress
	in.server.Domain = "localhost"
	in.server.ReadTimeout = 30 * time.Second
	in.server.WriteTimeout = 30 * time.Second
	in.server.MaxMessageBytes = 30 * 1024 * 1024
	in.server.MaxRecipients = 50
	in.server.AllowInsecureAuth = true

	in.logger.Info("SMTP ingest starting", zap.String("address", in.cfg.ListenAddress))

	go func() {
		if err := in.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				in.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (in *Ingest) Stop() error {
	if in.server != nil {
		return in.server.Close()
	}
	return nil
}

// forward re-injects the annotated message to the downstream MTA
func (in *Ingest) forward(sender string, recipients []string, emailData []byte) error {
	downstreamAddr := fmt.Sprintf("%s:%d", in.cfg.DownstreamAddress, in.cfg.DownstreamPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", downstreamAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to downstream MTA: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			in.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		in.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	ingest *Ingest
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		ingest:     b.ingest,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	ingest     *Ingest
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the proxy)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and forwards it with triage headers
// prepended. Classification failures still forward the mail, annotated
// with an error header.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.ingest.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.ingest.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.ingest.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	input := &core.EmailInput{
		Content: textContent,
		Source:  core.SourceSMTP,
	}

	var annotated bytes.Buffer

	result, classifyErr := s.ingest.service.ClassifyEmail(ctx, input)
	if classifyErr != nil {
		s.ingest.logger.Warn("Classification failed for inbound mail, forwarding unclassified",
			zap.String("sender", s.sender),
			zap.Error(classifyErr))
		fmt.Fprintf(&annotated, "X-Email-Triage-Error: %s\r\n", classifyErr.Error())
	} else {
		fmt.Fprintf(&annotated, "%s: %s\r\n", s.ingest.cfg.CategoryHeader, result.Category)
		fmt.Fprintf(&annotated, "%s: %.4f\r\n", s.ingest.cfg.ConfidenceHeader, result.Confidence)
		fmt.Fprintf(&annotated, "%s: %s\r\n", s.ingest.cfg.ModelHeader, result.ModelUsed)
	}

	// Original message follows untouched, headers and body alike
	annotated.Write(rawData)

	if err := s.ingest.forward(s.sender, s.recipients, annotated.Bytes()); err != nil {
		s.ingest.logger.Error("Failed to forward email downstream",
			zap.String("sender", s.sender),
			zap.Error(err))
		return err
	}

	if classifyErr == nil {
		s.ingest.logger.Info("Processed inbound email",
			zap.String("sender", s.sender),
			zap.String("category", string(result.Category)),
			zap.Float64("confidence", result.Confidence),
			zap.String("model", result.ModelUsed))
	}

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
