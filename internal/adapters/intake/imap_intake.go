package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/ports"
)

// IMAPOptions configures the mailbox poller
type IMAPOptions struct {
	Address      string
	Username     string
	Password     string
	TLS          bool
	Mailbox      string
	SpamMailbox  string
	PollInterval time.Duration
	// MaxAttempts bounds how often a failing message is processed before it is given up
	MaxAttempts int
}

// mailbox is the slice of an IMAP session the poller needs
type mailbox interface {
	Unseen(ctx context.Context) ([]imap.UID, error)
	Fetch(ctx context.Context, uid imap.UID) ([]byte, error)
	MarkSeen(ctx context.Context, uid imap.UID) error
	Move(ctx context.Context, uid imap.UID, dest string) error
	Close() error
}

// IMAPIntake polls a mailbox for unseen messages and runs each through the assistant.
// Spam is moved to the spam mailbox; everything handled is marked \Seen.
type IMAPIntake struct {
	processor ports.EmailProcessor
	opts      IMAPOptions
	logger    *zap.Logger
	connect   func(ctx context.Context) (mailbox, error)

	failMu   sync.Mutex
	failures map[imap.UID]int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewIMAPIntake creates a new mailbox poller
func NewIMAPIntake(processor ports.EmailProcessor, opts IMAPOptions, logger *zap.Logger) *IMAPIntake {
	if opts.Mailbox == "" {
		opts.Mailbox = "INBOX"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	i := &IMAPIntake{
		processor: processor,
		opts:      opts,
		logger:    logger,
		failures:  make(map[imap.UID]int),
	}
	i.connect = i.dial
	return i
}

// Start runs an immediate poll and then polls every PollInterval until Stop
func (i *IMAPIntake) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel != nil {
		return errors.New("imap intake already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	i.cancel = cancel
	i.done = make(chan struct{})

	i.logger.Info("IMAP intake starting",
		zap.String("address", i.opts.Address),
		zap.String("mailbox", i.opts.Mailbox),
		zap.Duration("poll_interval", i.opts.PollInterval))

	go i.run(ctx)
	return nil
}

// Stop cancels polling and waits for an in-flight poll to finish
func (i *IMAPIntake) Stop() error {
	i.mu.Lock()
	cancel, done := i.cancel, i.done
	i.cancel = nil
	i.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (i *IMAPIntake) run(ctx context.Context) {
	defer close(i.done)

	ticker := time.NewTicker(i.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := i.Poll(ctx); err != nil && ctx.Err() == nil {
			i.logger.Error("Mailbox poll failed", zap.Error(err))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Poll processes the currently unseen messages once
func (i *IMAPIntake) Poll(ctx context.Context) error {
	mb, err := i.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := mb.Close(); err != nil {
			i.logger.Debug("Failed to close IMAP session", zap.Error(err))
		}
	}()

	uids, err := mb.Unseen(ctx)
	if err != nil {
		return err
	}
	if len(uids) > 0 {
		i.logger.Debug("Found unseen messages", zap.Int("count", len(uids)))
	}

	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.handle(ctx, mb, uid); err != nil {
			i.logger.Error("Failed to handle message", zap.Uint32("uid", uint32(uid)), zap.Error(err))
		}
	}
	return nil
}

func (i *IMAPIntake) handle(ctx context.Context, mb mailbox, uid imap.UID) error {
	raw, err := mb.Fetch(ctx, uid)
	if err != nil {
		return err
	}

	email, err := ParseMessage(raw)
	if err == nil {
		err = email.Validate()
	}
	if err != nil {
		// unreadable messages are marked seen so they are not retried forever
		i.logger.Warn("Skipping unreadable message", zap.Uint32("uid", uint32(uid)), zap.Error(err))
		return mb.MarkSeen(ctx, uid)
	}

	final, err := i.processor.Process(ctx, email)
	if err != nil {
		if i.recordFailure(uid) < i.opts.MaxAttempts {
			// left unseen for the next poll
			return fmt.Errorf("processing message: %w", err)
		}
		i.logger.Warn("Giving up on message after repeated failures",
			zap.Uint32("uid", uint32(uid)),
			zap.Int("attempts", i.opts.MaxAttempts),
			zap.Error(err))
		i.clearFailures(uid)
		return mb.MarkSeen(ctx, uid)
	}
	i.clearFailures(uid)

	if err := mb.MarkSeen(ctx, uid); err != nil {
		return err
	}
	if isSpam, _ := final.Spam(); isSpam && i.opts.SpamMailbox != "" {
		if err := mb.Move(ctx, uid, i.opts.SpamMailbox); err != nil {
			return err
		}
		i.logger.Info("Moved spam to spam mailbox",
			zap.Uint32("uid", uint32(uid)),
			zap.String("mailbox", i.opts.SpamMailbox),
			zap.String("reason", final.Reason()))
	}
	return nil
}

func (i *IMAPIntake) recordFailure(uid imap.UID) int {
	i.failMu.Lock()
	defer i.failMu.Unlock()
	i.failures[uid]++
	return i.failures[uid]
}

func (i *IMAPIntake) clearFailures(uid imap.UID) {
	i.failMu.Lock()
	delete(i.failures, uid)
	i.failMu.Unlock()
}

// dial opens an authenticated session with the configured mailbox selected
func (i *IMAPIntake) dial(_ context.Context) (mailbox, error) {
	var (
		client *imapclient.Client
		err    error
	)
	if i.opts.TLS {
		client, err = imapclient.DialTLS(i.opts.Address, nil)
	} else {
		client, err = imapclient.DialInsecure(i.opts.Address, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", i.opts.Address, err)
	}

	if err := client.Login(i.opts.Username, i.opts.Password).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: IMAP authentication failed for %s: %v", core.ErrConfiguration, i.opts.Username, err)
	}
	if _, err := client.Select(i.opts.Mailbox, nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting %s: %w", i.opts.Mailbox, err)
	}
	return &imapMailbox{client: client}, nil
}

type imapMailbox struct {
	client *imapclient.Client
}

func (m *imapMailbox) Unseen(_ context.Context) ([]imap.UID, error) {
	data, err := m.client.UIDSearch(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}
	return data.AllUIDs(), nil
}

func (m *imapMailbox) Fetch(_ context.Context, uid imap.UID) ([]byte, error) {
	section := &imap.FetchItemBodySection{Peek: true}
	cmd := m.client.Fetch(imap.UIDSetNum(uid), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{section},
	})
	defer cmd.Close()

	msg := cmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message UID %d not found", uid)
	}
	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}
	raw := buf.FindBodySection(section)
	if raw == nil {
		return nil, fmt.Errorf("message UID %d has no body", uid)
	}
	if err := cmd.Close(); err != nil {
		return nil, fmt.Errorf("closing fetch: %w", err)
	}
	return raw, nil
}

func (m *imapMailbox) MarkSeen(_ context.Context, uid imap.UID) error {
	return m.client.Store(imap.UIDSetNum(uid), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil).Close()
}

func (m *imapMailbox) Move(_ context.Context, uid imap.UID, dest string) error {
	if _, err := m.client.Move(imap.UIDSetNum(uid), dest).Wait(); err != nil {
		return fmt.Errorf("moving message to %s: %w", dest, err)
	}
	return nil
}

func (m *imapMailbox) Close() error {
	return m.client.Logout().Wait()
}

var _ ports.EmailIntake = (*IMAPIntake)(nil)
