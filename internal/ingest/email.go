// Package ingest normalizes inbound email messages into document jobs for
// the processing pipeline.
package ingest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

// Email is one parsed inbound message.
type Email struct {
	ID          string
	Subject     string
	From        string
	Date        time.Time
	Text        string
	HTML        string
	Attachments []Attachment
}

// Attachment is one file carried by an email.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ParseEmail reads a raw MIME message. The Message-ID header becomes the
// email id; messages without one get a stable content-hash id so repeated
// sweeps of the same file keep the same fingerprint.
func ParseEmail(r io.Reader) (*Email, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIME message: %w", err)
	}

	email := &Email{
		ID:      messageID(env, data),
		Subject: env.GetHeader("Subject"),
		From:    env.GetHeader("From"),
		Date:    messageDate(env),
		Text:    env.Text,
		HTML:    env.HTML,
	}

	for _, part := range env.Attachments {
		if len(part.Content) == 0 {
			continue
		}
		email.Attachments = append(email.Attachments, Attachment{
			Filename:    part.FileName,
			ContentType: part.ContentType,
			Content:     part.Content,
		})
	}

	// Named inline parts are treated as attachments too; unnamed inlines are
	// almost always signature logos and tracking pixels
	for _, part := range env.Inlines {
		if part.FileName == "" || len(part.Content) == 0 {
			continue
		}
		email.Attachments = append(email.Attachments, Attachment{
			Filename:    part.FileName,
			ContentType: part.ContentType,
			Content:     part.Content,
		})
	}

	return email, nil
}

// BodyText returns the message body as plain text, converting the HTML part
// when no plain-text part exists.
func (e *Email) BodyText() string {
	if strings.TrimSpace(e.Text) != "" {
		return e.Text
	}
	if e.HTML == "" {
		return ""
	}

	text, err := ExtractText(e.HTML)
	if err != nil {
		return ""
	}
	return text
}

func messageID(env *enmime.Envelope, raw []byte) string {
	id := strings.Trim(env.GetHeader("Message-ID"), "<> \t")
	if id != "" {
		return id
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

func messageDate(env *enmime.Envelope) time.Time {
	if d, err := mail.ParseDate(env.GetHeader("Date")); err == nil {
		return d.UTC()
	}
	return time.Now().UTC()
}
