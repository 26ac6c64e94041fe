package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

const (
	Issuer   = "opustools"
	Audience = "opustools-api"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrBadIssuer    = errors.New("bad issuer")
	ErrBadAudience  = errors.New("bad audience")
	ErrMissingSub   = errors.New("missing sub")
)

// Manager signs and verifies HS256 access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

var _ port.TokenManager = (*Manager)(nil)

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})),
		now:    time.Now,
	}
}

func (m *Manager) Issue(userID uuid.UUID) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewUUID().String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Parse(raw string) (port.TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := m.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return port.TokenClaims{}, ErrTokenExpired
		}
		return port.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return port.TokenClaims{}, ErrInvalidToken
	}

	if !claims.VerifyIssuer(Issuer, true) {
		return port.TokenClaims{}, ErrBadIssuer
	}
	if !claims.VerifyAudience(Audience, true) {
		return port.TokenClaims{}, ErrBadAudience
	}
	if claims.ExpiresAt == nil {
		return port.TokenClaims{}, ErrTokenExpired
	}
	if claims.Subject == "" {
		return port.TokenClaims{}, ErrMissingSub
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return port.TokenClaims{}, fmt.Errorf("%w: sub is not a uuid", ErrInvalidToken)
	}
	if claims.ID == "" {
		return port.TokenClaims{}, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}

	return port.TokenClaims{
		UserID:    userID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
