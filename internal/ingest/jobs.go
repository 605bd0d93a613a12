package ingest

import (
	"fmt"
	"strings"

	"github.com/yatharthk2/EmailDemo-sub001/internal/types"
)

// BodyFilename is the synthetic filename under which an email's inline body
// is processed. Many merchants send the receipt as the message body rather
// than as an attachment.
const BodyFilename = "body.txt"

// JobsFromEmail fans one email out into document jobs: one per attachment,
// plus one for the inline body when the message has any readable text.
func JobsFromEmail(email *Email) []types.DocumentJob {
	var jobs []types.DocumentJob

	for i, att := range email.Attachments {
		name := att.Filename
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i+1)
		}

		mimeType := att.ContentType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		jobs = append(jobs, types.DocumentJob{
			EmailID:      email.ID,
			Filename:     name,
			MimeType:     mimeType,
			ContentBytes: att.Content,
			ReceivedAt:   email.Date,
		})
	}

	if body := email.BodyText(); strings.TrimSpace(body) != "" {
		jobs = append(jobs, types.DocumentJob{
			EmailID:      email.ID,
			Filename:     BodyFilename,
			MimeType:     "text/plain",
			ContentBytes: []byte(body),
			ReceivedAt:   email.Date,
		})
	}

	return jobs
}
