package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/technoactive/donatheresa-website-sub002/internal/shared/config"
	"github.com/technoactive/donatheresa-website-sub002/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Service interface defines the contract for staff authentication
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// EnsureDefaultAdmin seeds the first manager account from configuration
	// when the staff table is empty.
	EnsureDefaultAdmin(ctx context.Context) error
}

type service struct {
	repo Repository
	cfg  *config.Config
	log  *logger.Logger
}

// NewService creates a new auth service instance
func NewService(repo Repository, cfg *config.Config) Service {
	return &service{
		repo: repo,
		cfg:  cfg,
		log:  logger.GetDefault(),
	}
}

// Login verifies credentials and issues a signed access token. The same
// generic error covers unknown email and wrong password.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("staff lookup failed: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.JWT.JWTExpiresIn)
	token, err := s.generateAccessToken(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *service) generateAccessToken(user *StaffUser, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"staff_id": user.ID.String(),
		"email":    user.Email,
		"role":     user.Role,
		"type":     "access",
		"iat":      time.Now().Unix(),
		"exp":      expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.Secret))
}

// EnsureDefaultAdmin creates the configured manager account on first boot so
// the dashboard is reachable before any staff exist.
func (s *service) EnsureDefaultAdmin(ctx context.Context) error {
	if s.cfg.Admin.Email == "" || s.cfg.Admin.Password == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("staff count failed: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &StaffUser{
		Name:  s.cfg.Admin.Name,
		Email: strings.ToLower(strings.TrimSpace(s.cfg.Admin.Email)),
		Role:  RoleManager,
	}
	if err := admin.SetPassword(s.cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	s.log.InfoWithContext(ctx, "seeded default staff account", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}
