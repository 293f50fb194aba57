// Package auth maps request credentials to principals: password hashing
// and verification, registration, and bearer-token issuance/validation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

// DefaultTokenTTL matches the original access-token lifetime.
const DefaultTokenTTL = 60 * time.Minute

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *simplesocial.User) error
	GetUserByEmail(ctx context.Context, email string) (*simplesocial.User, error)
}

// Service implements identity and access: registration, login, and
// HS256 bearer tokens whose subject is the user's email.
type Service struct {
	store  UserStore
	tokens *jwtauth.JWTAuth
	ttl    time.Duration
}

// New creates an auth service signing tokens with the given secret.
// A non-positive ttl falls back to DefaultTokenTTL.
func New(store UserStore, secret []byte, ttl time.Duration) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		store:  store,
		tokens: jwtauth.New("HS256", secret, nil),
		ttl:    ttl,
	}, nil
}

// Register creates a new account, hashing the password, and returns the
// principal. Returns ErrDuplicateEmail when the email is already taken.
func (s *Service) Register(ctx context.Context, email, username, password string) (*simplesocial.Principal, error) {
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, simplesocial.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, simplesocial.ErrDuplicateEmail
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &simplesocial.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	// The store's unique email index closes the check-then-create race.
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return &simplesocial.Principal{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// Authenticate verifies the email/password pair. Unknown email and wrong
// password fail identically with ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*simplesocial.Principal, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, simplesocial.ErrUserNotFound) {
			return nil, simplesocial.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, simplesocial.ErrInvalidCredentials
	}

	return &simplesocial.Principal{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

// IssueToken signs a bearer token for the principal.
func (s *Service) IssueToken(principal simplesocial.Principal) (string, error) {
	claims := map[string]interface{}{"sub": principal.Email}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, s.ttl)

	_, tokenString, err := s.tokens.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken resolves a bearer token to a principal. Every failure mode
// (bad signature, expiry, unknown subject) collapses to ErrInvalidToken so
// callers cannot distinguish forgery from expiry.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*simplesocial.Principal, error) {
	token, err := jwtauth.VerifyToken(s.tokens, tokenString)
	if err != nil {
		return nil, simplesocial.ErrInvalidToken
	}

	email := token.Subject()
	if email == "" {
		return nil, simplesocial.ErrInvalidToken
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, simplesocial.ErrInvalidToken
	}

	return &simplesocial.Principal{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}
