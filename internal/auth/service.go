package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"postboard/internal/storage"
	"postboard/pkg/email"
	"postboard/pkg/logger"
)

// UserStore is the persistence surface the auth service depends on.
// Implemented by storage.UserRepository.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (storage.User, error)
	FindByEmail(ctx context.Context, email string) (storage.User, error)
	SetConfirmed(ctx context.Context, email string) error
}

// Service implements registration, login and email confirmation.
type Service struct {
	users   UserStore
	hasher  *Hasher
	tokens  *Tokens
	sender  email.Sender
	baseURL string
	log     *slog.Logger
}

// NewService wires the auth service. baseURL is the externally reachable
// address used to build confirmation links.
func NewService(users UserStore, hasher *Hasher, tokens *Tokens, sender email.Sender, baseURL string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		sender:  sender,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}
}

// Register creates an unconfirmed account and returns the confirmation URL.
// A confirmation email is sent best-effort; a delivery failure does not fail
// the registration since the URL is also returned in the response.
func (s *Service) Register(ctx context.Context, emailAddr, password string) (string, error) {
	if _, err := s.users.FindByEmail(ctx, emailAddr); err == nil {
		return "", ErrDuplicateUser
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	if _, err := s.users.Create(ctx, emailAddr, hash); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return "", ErrDuplicateUser
		}
		return "", fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.IssueConfirmationToken(emailAddr)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	confirmationURL := fmt.Sprintf("%s/confirm/%s", s.baseURL, token)

	if s.sender != nil {
		if err := s.sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   emailAddr,
			Subject:  "Confirm your email",
			BodyHTML: fmt.Sprintf(`<p>Welcome! Click <a href="%s">here</a> to confirm your email.</p>`, confirmationURL),
			Tag:      "email-confirmation",
		}); err != nil {
			s.log.ErrorContext(ctx, "failed to send confirmation email",
				logger.Email(emailAddr), logger.Error(err))
		}
	}

	s.log.InfoContext(ctx, "user registered", logger.Email(emailAddr))
	return confirmationURL, nil
}

// Login verifies credentials and returns an access token. Unknown emails and
// wrong passwords produce the same error; an unconfirmed account is reported
// distinctly but with the same unauthorized status at the transport layer.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	if !user.Confirmed {
		return "", ErrUnconfirmedUser
	}

	token, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", logger.Email(user.Email), logger.UserID(user.ID))
	return token, nil
}

// Confirm marks the account referenced by a confirmation token as confirmed.
// Confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, token string) error {
	emailAddr, err := s.tokens.ResolveSubject(token, TokenTypeConfirmation)
	if err != nil {
		return err
	}

	if err := s.users.SetConfirmed(ctx, emailAddr); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("confirm: %w", err)
	}

	s.log.InfoContext(ctx, "user confirmed", logger.Email(emailAddr))
	return nil
}
