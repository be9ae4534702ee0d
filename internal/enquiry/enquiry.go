// Package enquiry holds the validated contact-form submission and the text
// rendered from it for email and alerts.
package enquiry

import (
	"fmt"
	"strings"
	"time"

	"ruralcyberguard/internal/mail"
)

const (
	DefaultSource = "website"

	// LogMessageLimit caps the message length written to operator logs.
	LogMessageLimit = 500
)

type Enquiry struct {
	Name       string
	Email      string
	Phone      string
	Message    string
	Source     string
	ReceivedAt time.Time
}

// Subject is shared by the email and the operator alert.
func (e Enquiry) Subject(brand string) string {
	return fmt.Sprintf("%s enquiry from %s", brand, e.Name)
}

// Text renders the plain-text body sent to the enquiries inbox.
func (e Enquiry) Text(brand string) string {
	phone := e.Phone
	if phone == "" {
		phone = "-"
	}
	lines := []string{
		fmt.Sprintf("New website enquiry (%s)", brand),
		"",
		fmt.Sprintf("Name: %s", e.Name),
		fmt.Sprintf("Email: %s", e.Email),
		fmt.Sprintf("Phone: %s", phone),
		fmt.Sprintf("Source: %s", e.Source),
		fmt.Sprintf("Time: %s", e.ReceivedAt.UTC().Format(time.RFC3339)),
		"",
		"Message:",
		e.Message,
	}
	return strings.Join(lines, "\n") + "\n"
}

// EmailMessage builds the outbound message. ReplyTo is the submitter so the inbox can
// answer directly.
func (e Enquiry) EmailMessage(from, to, brand, stream string) mail.Message {
	return mail.Message{
		From:          from,
		To:            to,
		ReplyTo:       e.Email,
		Subject:       e.Subject(brand),
		TextBody:      e.Text(brand),
		MessageStream: stream,
	}
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
