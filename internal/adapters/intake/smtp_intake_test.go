package intake

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/whitelist"
)

type fakeProcessor struct {
	mu     sync.Mutex
	emails []core.Email
	result func(core.Email) (*core.WorkflowState, error)
}

func (p *fakeProcessor) Process(_ context.Context, email core.Email) (*core.WorkflowState, error) {
	p.mu.Lock()
	p.emails = append(p.emails, email)
	p.mu.Unlock()
	return p.result(email)
}

func verdict(spam bool, detail string) func(core.Email) (*core.WorkflowState, error) {
	return func(e core.Email) (*core.WorkflowState, error) {
		s := core.NewWorkflowState(e)
		s.IsSpam = core.Ptr(spam)
		if spam {
			s.SpamReason = core.Ptr(detail)
		} else {
			s.EmailCategory = core.Ptr(detail)
		}
		return s, nil
	}
}

// sink is a downstream MTA that captures relayed messages
type sink struct {
	received chan []byte
	server   *smtp.Server
	addr     string
}

type sinkSession struct{ s *sink }

func (s *sinkSession) Reset()                               {}
func (s *sinkSession) Logout() error                        { return nil }
func (s *sinkSession) Mail(string, *smtp.MailOptions) error { return nil }
func (s *sinkSession) Rcpt(string, *smtp.RcptOptions) error { return nil }
func (s *sinkSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.s.received <- b
	return nil
}

func (s *sink) NewSession(*smtp.Conn) (smtp.Session, error) { return &sinkSession{s: s}, nil }

func newSink(t *testing.T) *sink {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &sink{received: make(chan []byte, 1), addr: l.Addr().String()}
	s.server = smtp.NewServer(s)
	s.server.Domain = "sink"
	go func() { _ = s.server.Serve(l) }()
	t.Cleanup(func() { _ = s.server.Close() })
	return s
}

func startIntake(t *testing.T, p *fakeProcessor, opts SMTPOptions) *SMTPIntake {
	t.Helper()
	opts.ListenAddress = "127.0.0.1:0"
	if opts.SpamHeader == "" {
		opts.SpamHeader = "X-Assistant-Spam"
		opts.CategoryHeader = "X-Assistant-Category"
		opts.ReasonHeader = "X-Assistant-Reason"
	}
	in := NewSMTPIntake(p, opts, zap.NewNop())
	require.NoError(t, in.Start(context.Background()))
	t.Cleanup(func() { _ = in.Stop() })
	return in
}

const testMessage = "From: bob@example.com\r\nTo: alice@example.com\r\nSubject: Hi\r\n\r\nHello Alice\r\n"

func send(addr, msg string) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Hello("client.test"); err != nil {
		return err
	}
	if err := c.Mail("bob@example.com", nil); err != nil {
		return err
	}
	if err := c.Rcpt("alice@example.com", nil); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	return w.Close()
}

func receive(t *testing.T, s *sink) string {
	t.Helper()
	select {
	case b := <-s.received:
		return string(b)
	case <-time.After(5 * time.Second):
		t.Fatal("no message relayed")
		return ""
	}
}

func TestSMTPIntake_RelaysWithHeaders(t *testing.T) {
	down := newSink(t)
	p := &fakeProcessor{result: verdict(false, "inquiry")}
	in := startIntake(t, p, SMTPOptions{RelayEnabled: true, RelayAddress: down.addr})

	require.NoError(t, send(in.Addr(), testMessage))

	out := receive(t, down)
	assert.Contains(t, out, "X-Assistant-Spam: false\r\n")
	assert.Contains(t, out, "X-Assistant-Category: inquiry\r\n")
	assert.Contains(t, out, "Hello Alice")

	require.Len(t, p.emails, 1)
	assert.Equal(t, core.Email{Sender: "bob@example.com", Subject: "Hi", Body: "Hello Alice"}, p.emails[0])
}

func TestSMTPIntake_SpamReasonIsOneLine(t *testing.T) {
	down := newSink(t)
	p := &fakeProcessor{result: verdict(true, "phishing\nlink")}
	in := startIntake(t, p, SMTPOptions{RelayEnabled: true, RelayAddress: down.addr})

	require.NoError(t, send(in.Addr(), testMessage))

	out := receive(t, down)
	assert.Contains(t, out, "X-Assistant-Spam: true\r\n")
	assert.Contains(t, out, "X-Assistant-Reason: phishing link\r\n")
}

func TestSMTPIntake_BlocksSpam(t *testing.T) {
	p := &fakeProcessor{result: verdict(true, "scam")}
	in := startIntake(t, p, SMTPOptions{BlockSpam: true})

	err := send(in.Addr(), testMessage)
	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr), "got %v", err)
	assert.Equal(t, 550, smtpErr.Code)
}

func TestSMTPIntake_ProcessingFailureFailsOpen(t *testing.T) {
	down := newSink(t)
	p := &fakeProcessor{result: func(core.Email) (*core.WorkflowState, error) {
		return nil, errors.New("model unavailable")
	}}
	in := startIntake(t, p, SMTPOptions{BlockSpam: true, RelayEnabled: true, RelayAddress: down.addr})

	require.NoError(t, send(in.Addr(), testMessage))

	out := receive(t, down)
	assert.True(t, strings.HasPrefix(out, "X-Assistant-Error: model unavailable\r\n"))
}

func TestSMTPIntake_RelayDownIsTemporaryFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := l.Addr().String()
	require.NoError(t, l.Close())

	p := &fakeProcessor{result: verdict(false, "inquiry")}
	in := startIntake(t, p, SMTPOptions{RelayEnabled: true, RelayAddress: deadAddr})

	err = send(in.Addr(), testMessage)
	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr), "got %v", err)
	assert.Equal(t, 451, smtpErr.Code)
}

func TestSMTPIntake_TrustedSenderSkipsAssistant(t *testing.T) {
	down := newSink(t)
	p := &fakeProcessor{result: verdict(true, "scam")}
	in := startIntake(t, p, SMTPOptions{
		BlockSpam:    true,
		RelayEnabled: true,
		RelayAddress: down.addr,
		Trusted:      whitelist.NewChecker([]string{"example.com"}, zap.NewNop()),
	})

	require.NoError(t, send(in.Addr(), testMessage))

	out := receive(t, down)
	assert.True(t, strings.HasPrefix(out, "From: bob@example.com"))
	assert.NotContains(t, out, "X-Assistant-")
	assert.Empty(t, p.emails)
}
