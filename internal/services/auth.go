package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/email"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/models"
	"github.com/canvistapp/canvist/internal/ratelimit"
)

const (
	minPasswordLen = 8

	// resetTokenTTL bounds password reset links. Keep the email template's
	// validity note in sync with this.
	resetTokenTTL = 15 * time.Minute

	resetTokenAudience = "password-reset"
)

// AuthConfig is the slice of application config the auth service needs.
type AuthConfig struct {
	AdminPasswordHash string
	TokenSecret       string
	BaseURL           string
}

// AuthService implements customer signup/login, admin login and the password
// reset flow. All credential checks are rate limited per identity+IP.
type AuthService struct {
	users        userRepo
	loginLimiter *ratelimit.Limiter
	adminLimiter *ratelimit.Limiter
	emails       email.Provider
	cfg          AuthConfig
	logger       *slog.Logger
}

func NewAuthService(users userRepo, loginLimiter, adminLimiter *ratelimit.Limiter, emails email.Provider, cfg AuthConfig, logger *slog.Logger) *AuthService {
	if emails == nil {
		emails = email.NoopProvider{}
	}
	return &AuthService{
		users:        users,
		loginLimiter: loginLimiter,
		adminLimiter: adminLimiter,
		emails:       emails,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *AuthService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// SignUp registers a new customer account.
func (s *AuthService) SignUp(ctx context.Context, emailAddr, name, password string) (*models.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, validationErrorf("invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, validationErrorf("password must be at least %d characters", minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        emailAddr,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.loggerFromContext(ctx).Info("user signed up", "user_id", user.ID)
	return user, nil
}

// Login verifies customer credentials. Wrong email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, emailAddr, password, ip string) (*models.User, error) {
	emailAddr = normalizeEmail(emailAddr)

	result, err := s.loginLimiter.Attempt(ctx, emailAddr, ip)
	if err != nil {
		s.loggerFromContext(ctx).Warn("rate limiter unavailable", "error", err)
	}
	if !result.Allowed {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// Burn comparable time so absence is not observable.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.loginLimiter.Reset(ctx, emailAddr, ip)
	return user, nil
}

// AdminLogin verifies the single admin credential from configuration.
func (s *AuthService) AdminLogin(ctx context.Context, password, ip string) error {
	result, err := s.adminLimiter.Attempt(ctx, "admin", ip)
	if err != nil {
		s.loggerFromContext(ctx).Warn("rate limiter unavailable", "error", err)
	}
	if !result.Allowed {
		return ErrTooManyAttempts
	}
	if s.cfg.AdminPasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	s.adminLimiter.Reset(ctx, "admin", ip)
	return nil
}

// ForgotPassword emails a reset link when the account exists. The response is
// identical either way, so the endpoint cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr, ip string) error {
	emailAddr = normalizeEmail(emailAddr)

	result, err := s.loginLimiter.Attempt(ctx, emailAddr, ip)
	if err != nil {
		s.loggerFromContext(ctx).Warn("rate limiter unavailable", "error", err)
	}
	if !result.Allowed {
		return ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	token, err := s.resetToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	resetURL := strings.TrimRight(s.cfg.BaseURL, "/") + "/reset-password?token=" + token
	if err := s.emails.SendEmail(ctx, email.PasswordResetEmail(user.Email, resetURL)); err != nil {
		s.loggerFromContext(ctx).Warn("failed to send reset email", "error", err, "user_id", user.ID)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLen {
		return validationErrorf("password must be at least %d characters", minPasswordLen)
	}

	userID, err := s.parseResetToken(token)
	if err != nil {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.loggerFromContext(ctx).Info("password reset", "user_id", userID)
	return nil
}

// GetUser loads a user by id, for session resolution.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) resetToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{resetTokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.TokenSecret))
}

func (s *AuthService) parseResetToken(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.TokenSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(resetTokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
