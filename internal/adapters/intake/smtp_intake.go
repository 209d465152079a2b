package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/ports"
	"github.com/mikey/llm-email-assistant/internal/whitelist"
)

// SMTPOptions configures the SMTP content filter
type SMTPOptions struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	BlockSpam       bool
	SpamHeader      string
	CategoryHeader  string
	ReasonHeader    string
	RelayEnabled    bool
	RelayAddress    string
	ProcessTimeout  time.Duration
	// Trusted senders are relayed without running the assistant.
	Trusted *whitelist.Checker
}

// SMTPIntake is a content filter: it accepts mail over SMTP, runs the assistant,
// stamps the verdict into headers and relays the message downstream.
type SMTPIntake struct {
	processor ports.EmailProcessor
	opts      SMTPOptions
	logger    *zap.Logger

	mu       sync.Mutex
	server   *smtp.Server
	listener net.Listener
}

// NewSMTPIntake creates a new SMTP content filter
func NewSMTPIntake(processor ports.EmailProcessor, opts SMTPOptions, logger *zap.Logger) *SMTPIntake {
	if opts.Domain == "" {
		opts.Domain = "localhost"
	}
	if opts.ProcessTimeout <= 0 {
		opts.ProcessTimeout = 2 * time.Minute
	}
	return &SMTPIntake{
		processor: processor,
		opts:      opts,
		logger:    logger,
	}
}

// Start binds the listen address and serves in the background
func (f *SMTPIntake) Start(_ context.Context) error {
	l, err := net.Listen("tcp", f.opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.opts.ListenAddress, err)
	}

	server := smtp.NewServer(&smtpBackend{intake: f})
	server.Domain = f.opts.Domain
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = f.opts.MaxMessageBytes
	server.MaxRecipients = 50

	f.mu.Lock()
	f.server = server
	f.listener = l
	f.mu.Unlock()

	f.logger.Info("SMTP intake starting", zap.String("address", l.Addr().String()))
	go func() {
		if err := server.Serve(l); err != nil && !errors.Is(err, smtp.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, useful when listening on port 0
func (f *SMTPIntake) Addr() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return ""
	}
	return f.listener.Addr().String()
}

// Stop closes the server and its listener
func (f *SMTPIntake) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.server == nil {
		return nil
	}
	err := f.server.Close()
	f.server = nil
	return err
}

// handle processes one delivered message. The returned error is sent to the client.
func (f *SMTPIntake) handle(sender string, recipients []string, raw []byte) error {
	email, err := ParseMessage(raw)
	if err != nil {
		f.logger.Error("Failed to parse email message", zap.Error(err), zap.String("sender", sender))
		return &smtp.SMTPError{
			Code:         554,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Malformed message",
		}
	}
	if email.Sender == "" {
		email.Sender = sender
	}

	if f.opts.Trusted.IsWhitelisted(email.Sender) {
		f.logger.Debug("Skipping trusted sender", zap.String("sender", email.Sender))
		if !f.opts.RelayEnabled {
			return nil
		}
		return f.relayOrDefer(sender, recipients, raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.opts.ProcessTimeout)
	defer cancel()

	final, procErr := f.processor.Process(ctx, email)

	var headers bytes.Buffer
	if procErr != nil {
		// fail open: the message is delivered unclassified
		f.logger.Error("Failed to process email", zap.Error(procErr), zap.String("sender", sender))
		writeHeader(&headers, "X-Assistant-Error", procErr.Error())
	} else {
		isSpam, _ := final.Spam()
		if isSpam && f.opts.BlockSpam {
			f.logger.Info("Rejecting spam email",
				zap.String("from", sender),
				zap.String("reason", final.Reason()))
			return &smtp.SMTPError{
				Code:         550,
				EnhancedCode: smtp.EnhancedCode{5, 7, 1},
				Message:      "Rejected as spam",
			}
		}
		writeHeader(&headers, f.opts.SpamHeader, strconv.FormatBool(isSpam))
		if isSpam {
			writeHeader(&headers, f.opts.ReasonHeader, final.Reason())
		} else {
			writeHeader(&headers, f.opts.CategoryHeader, final.Category(""))
		}
	}

	if !f.opts.RelayEnabled {
		return nil
	}

	return f.relayOrDefer(sender, recipients, append(headers.Bytes(), raw...))
}

// relayOrDefer relays data and maps a relay failure to a temporary rejection
func (f *SMTPIntake) relayOrDefer(sender string, recipients []string, data []byte) error {
	if err := f.relay(sender, recipients, data); err != nil {
		f.logger.Error("Failed to relay email", zap.Error(err), zap.String("relay", f.opts.RelayAddress))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 4, 0},
			Message:      "Downstream relay unavailable",
		}
	}
	return nil
}

// writeHeader folds the value onto one line so it cannot break the header block
func writeHeader(buf *bytes.Buffer, name, value string) {
	if name == "" {
		return
	}
	value = strings.Join(strings.Fields(value), " ")
	fmt.Fprintf(buf, "%s: %s\r\n", name, value)
}

// relay hands the annotated message back to the MTA
func (f *SMTPIntake) relay(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", f.opts.RelayAddress, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
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
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	intake *SMTPIntake
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Logout() error {
	return nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	return s.intake.handle(s.sender, s.recipients, raw)
}

var _ ports.EmailIntake = (*SMTPIntake)(nil)
