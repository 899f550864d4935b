package services

import (
	"context"
	"log"
)

// Mailer delivers account emails. The core only sees the error; delivery
// details stay behind this boundary.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs. Used in development and
// wherever no SMTP relay is configured.
func NewLogMailer() Mailer {
	return &logMailer{}
}

func (logMailer) SendPasswordReset(_ context.Context, to, token string) error {
	log.Printf("password reset requested for %s (token %s...)", to, token[:8])
	return nil
}
