package mock

import (
	"context"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// TokenManager implements port.TokenManager for tests.
type TokenManager struct {
	Token    string
	IssueErr error

	Claims   port.TokenClaims
	ParseErr error

	IssuedFor uuid.UUID
	Parsed    string
}

func (m *TokenManager) Issue(userID uuid.UUID) (string, error) {
	m.IssuedFor = userID
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	return m.Token, nil
}

func (m *TokenManager) Parse(raw string) (port.TokenClaims, error) {
	m.Parsed = raw
	if m.ParseErr != nil {
		return port.TokenClaims{}, m.ParseErr
	}
	return m.Claims, nil
}

// Mailer implements port.Mailer for tests.
type Mailer struct {
	Err error

	Called  bool
	To      string
	Subject string
	Body    string
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	m.Called = true
	m.To = to
	m.Subject = subject
	m.Body = body
	return m.Err
}
