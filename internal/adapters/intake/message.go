// Package intake feeds incoming mail to the assistant: an SMTP content filter that
// sits in front of the MTA and an IMAP poller that works a mailbox.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// ParseMessage extracts sender, subject and the readable body from an RFC 5322
// message. text/plain parts are preferred; text/html is used when no plain part exists.
func ParseMessage(raw []byte) (core.Email, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return core.Email{}, fmt.Errorf("%w: failed to parse message: %v", core.ErrInvalidEmail, err)
	}
	defer mr.Close()

	var email core.Email
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.Sender = from[0].Address
	}
	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	}

	var textBody, htmlBody strings.Builder
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return core.Email{}, fmt.Errorf("%w: failed to read message part: %v", core.ErrInvalidEmail, err)
		}
		if part == nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case contentType == "" || strings.HasPrefix(contentType, "text/plain"):
			textBody.Write(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody.Write(body)
		}
	}

	email.Body = strings.TrimSpace(textBody.String())
	if email.Body == "" {
		email.Body = strings.TrimSpace(htmlBody.String())
	}
	return email, nil
}
