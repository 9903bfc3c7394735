package gmail

import (
	"encoding/base64"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// Sentinel values for messages missing the corresponding field. Body
// extraction never fails; a message without a usable body yields
// EmptyContent.
const (
	NoSubject    = "No Subject"
	NoSender     = "No Sender"
	EmptyContent = "No Content"
)

// maxBodyLength caps how much body text is kept per message. Pattern
// matching and classification only ever look at the beginning.
const maxBodyLength = 4096

// extractEmail converts a raw Gmail message into an Email, applying
// the body-extraction policy: prefer the first text/plain part, else
// the first text/html part, else the empty-content sentinel.
func extractEmail(msg *gmail.Message) *Email {
	email := &Email{
		ID:       msg.Id,
		From:     NoSender,
		Subject:  NoSubject,
		Body:     EmptyContent,
		LabelIDs: msg.LabelIds,
	}

	if msg.Payload == nil {
		return email
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			if h.Value != "" {
				email.From = h.Value
			}
		case "subject":
			if h.Value != "" {
				email.Subject = h.Value
			}
		}
	}

	if body := extractBody(msg.Payload); body != "" {
		if len(body) > maxBodyLength {
			body = body[:maxBodyLength]
		}
		email.Body = body
	}

	return email
}

// extractBody walks the MIME tree for the preferred body part.
func extractBody(payload *gmail.MessagePart) string {
	if body := findPart(payload, "text/plain"); body != "" {
		return body
	}
	if body := findPart(payload, "text/html"); body != "" {
		return body
	}
	// Single-part messages carry the body directly on the payload.
	return decodePartBody(payload)
}

// findPart returns the decoded body of the first part with the given
// MIME type, in document order.
func findPart(part *gmail.MessagePart, mimeType string) string {
	var body string
	walkParts(part, func(p *gmail.MessagePart) {
		if body == "" && strings.HasPrefix(p.MimeType, mimeType) {
			body = decodePartBody(p)
		}
	})
	return body
}

func decodePartBody(part *gmail.MessagePart) string {
	if part == nil || part.Body == nil || part.Body.Data == "" {
		return ""
	}
	// Gmail uses RFC 4648 base64url encoding; fall back to standard
	// base64 for safety.
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.StdEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

// walkParts recursively walks through message parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}
