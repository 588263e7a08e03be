package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/arkana/auth-service/internal/config"
	"github.com/arkana/auth-service/internal/model"
	"github.com/arkana/auth-service/internal/repository"
	"github.com/arkana/auth-service/internal/store"
	"github.com/arkana/auth-service/internal/utils"
)

// UserStore is the durable user record capability consumed by the service.
// Satisfied by repository.UserRepo in production and by fakes in tests.
type UserStore interface {
	Create(ctx context.Context, email, fullName, hashedPassword string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetVerified(ctx context.Context, email string, now time.Time) (int64, error)
	SetPassword(ctx context.Context, email, hashedPassword string, now time.Time) (int64, error)
}

// Mailer delivers account emails. Both calls are fire-and-forget from the
// service's perspective: they are dispatched off the request path and a
// delivery failure never fails the triggering operation.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access token lifetime in seconds
}

// AuthService is the session lifecycle manager. All collaborators are
// injected at construction; the service holds no ambient global state.
type AuthService struct {
	cfg    config.Config
	users  UserStore
	tokens store.TokenStore
	mailer Mailer
}

func NewAuthService(cfg config.Config, users UserStore, tokens store.TokenStore, mailer Mailer) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens, mailer: mailer}
}

const emailDispatchTimeout = 30 * time.Second

// Register creates a user and schedules a verification email. A duplicate
// email fails with ErrEmailExists; registration is the one flow where that
// disclosure is intended. The returned id identifies the new record.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (uint64, error) {
	email = normalizeEmail(email)

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, email, fullName, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return 0, ErrEmailExists
		}
		return 0, err
	}

	token, err := utils.NewActionToken()
	if err != nil {
		return 0, err
	}
	ttl := time.Duration(config.VerificationTTLSec) * time.Second
	if err := s.tokens.Put(ctx, store.VerificationKey(token), email, ttl); err != nil {
		return 0, err
	}

	s.dispatch("verification", email, func(ctx context.Context) error {
		return s.mailer.SendVerificationEmail(ctx, email, token)
	})
	return id, nil
}

// Login checks credentials and issues a fresh access/refresh pair. Unknown
// email and wrong password return the identical ErrInvalidCredentials.
// Persisting the refresh token under the subject key overwrites whatever
// was there, which is the sole revocation mechanism for earlier refresh
// tokens of the same subject.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = normalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !utils.VerifyPassword(u.HashedPassword, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return TokenPair{}, ErrAccountDisabled
	}

	accessTTL := time.Duration(s.cfg.AccessTTLSec) * time.Second
	refreshTTL := time.Duration(s.cfg.RefreshTTLSec) * time.Second

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.Email, u.ID, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.JWTSecret, u.Email, u.ID, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Put(ctx, store.RefreshTokenKey(u.Email), refresh.Token, refreshTTL); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresIn:    s.cfg.AccessTTLSec,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated: the stored token stays in place and
// is echoed back. The codec check alone is not enough — the presented token
// must also exactly match the stored one, otherwise a superseded or
// logged-out token would still pass on signature and expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := utils.VerifyToken(s.cfg.JWTSecret, refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	stored, err := s.tokens.Get(ctx, store.RefreshTokenKey(claims.Subject))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenPair{}, ErrTokenRevoked
		}
		return TokenPair{}, err
	}
	if stored != refreshToken {
		return TokenPair{}, ErrTokenRevoked
	}

	accessTTL := time.Duration(s.cfg.AccessTTLSec) * time.Second
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, claims.Subject, claims.UserID, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access.Token,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.AccessTTLSec,
	}, nil
}

// VerifyEmail consumes a verification token and marks the account verified.
// Consumption is atomic: of two racing requests with the same token exactly
// one proceeds, the other observes ErrActionTokenInvalid.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.tokens.TakeDelete(ctx, store.VerificationKey(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActionTokenInvalid
		}
		return err
	}

	n, err := s.users.SetVerified(ctx, email, time.Now().UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RequestPasswordReset issues a reset token for a known email and schedules
// the reset email. For an unknown email it does nothing and still reports
// success — callers must not be able to probe which addresses exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := utils.NewActionToken()
	if err != nil {
		return err
	}
	ttl := time.Duration(config.PasswordResetTTLSec) * time.Second
	if err := s.tokens.Put(ctx, store.PasswordResetKey(token), email, ttl); err != nil {
		return err
	}

	s.dispatch("password reset", email, func(ctx context.Context) error {
		return s.mailer.SendPasswordResetEmail(ctx, email, token)
	})
	return nil
}

// ConfirmPasswordReset consumes a reset token, overwrites the password hash
// and deletes the subject's stored refresh token. The delete forces every
// existing session through a fresh login: a password change must invalidate
// previously issued refresh tokens.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.TakeDelete(ctx, store.PasswordResetKey(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActionTokenInvalid
		}
		return err
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	n, err := s.users.SetPassword(ctx, email, hash, time.Now().UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	return s.tokens.Delete(ctx, store.RefreshTokenKey(email))
}

// Logout deletes the stored refresh token for a subject. Repeating it is
// harmless. The outstanding access token stays valid until natural expiry;
// stateless access tokens have no revocation list.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	return s.tokens.Delete(ctx, store.RefreshTokenKey(normalizeEmail(email)))
}

// GetUserByEmail loads a user record for the profile endpoints.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// GetUserByID loads a user record by its id.
func (s *AuthService) GetUserByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// dispatch runs an email send off the request path. The request's own
// context is not reused: the response returns before delivery and must not
// cancel it. Failures are logged and dropped.
func (s *AuthService) dispatch(kind, email string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			log.Printf("auth: %s email dispatch for %s failed: %v", kind, email, err)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
