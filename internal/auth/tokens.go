package auth

import (
	"errors"
	"fmt"
	"time"

	"postboard/pkg/jwt"
)

// Token types embedded in the claims. Access tokens authenticate API calls;
// confirmation tokens are single-purpose links sent by email. The two are
// never interchangeable.
const (
	TokenTypeAccess       = "access"
	TokenTypeConfirmation = "confirmation"
)

// Claims carried by every issued token.
type Claims struct {
	jwt.StandardClaims
	Type string `json:"type"`
}

// Tokens issues and resolves signed tokens.
type Tokens struct {
	svc             *jwt.Service
	accessTTL       time.Duration
	confirmationTTL time.Duration
	now             func() time.Time
}

// NewTokens creates a token issuer from cfg.
func NewTokens(cfg Config) (*Tokens, error) {
	svc, err := jwt.NewFromString(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("init token service: %w", err)
	}
	return &Tokens{
		svc:             svc,
		accessTTL:       cfg.AccessTokenTTL,
		confirmationTTL: cfg.ConfirmationTokenTTL,
		now:             time.Now,
	}, nil
}

// IssueAccessToken mints a short-lived token for API authentication.
func (t *Tokens) IssueAccessToken(email string) (string, error) {
	return t.issue(email, TokenTypeAccess, t.accessTTL)
}

// IssueConfirmationToken mints a longer-lived token for the email
// confirmation link.
func (t *Tokens) IssueConfirmationToken(email string) (string, error) {
	return t.issue(email, TokenTypeConfirmation, t.confirmationTTL)
}

func (t *Tokens) issue(email, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	token, err := t.svc.Generate(Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   email,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Type: tokenType,
	})
	if err != nil {
		return "", fmt.Errorf("issue %s token: %w", tokenType, err)
	}
	return token, nil
}

// ResolveSubject verifies the token and returns its subject. The token must
// carry the expected type; an access token can never pass as a confirmation
// token or vice versa. Expiry is reported separately from all other failures.
func (t *Tokens) ResolveSubject(token, wantType string) (string, error) {
	var claims Claims
	if err := t.svc.Parse(token, &claims); err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if claims.Type != wantType {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
