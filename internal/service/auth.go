package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	pkg_hash "github.com/Skotchmaster/pharmacy_shop/pkg/hash"
	"github.com/Skotchmaster/pharmacy_shop/pkg/logging"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Denylist holds revoked token ids. Optional: without it tokens live until expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	Repo      UserStore
	Tokens    *tokens.Manager
	Validator *validate.Validator
	Denylist  Denylist
	Events    Publisher

	// AllowRoleSignup lets /register honour a requested role.
	AllowRoleSignup bool
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.PublicUser
}

var (
	errInvalidCredentials = apperr.New(apperr.ErrInvalidCredentials, "Invalid credentials")
	errNoToken            = apperr.New(apperr.ErrUnauthenticated, "Access denied. No token provided.")
	errBadToken           = apperr.New(apperr.ErrUnauthenticated, "Invalid or expired token")
	errRevokedToken       = apperr.New(apperr.ErrUnauthenticated, "Token has been revoked")
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnCompare spends one bcrypt comparison so unknown users cost the same as wrong passwords.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = pkg_hash.HashPassword("pharmacy-dummy-password")
	})
	_ = pkg_hash.CheckPassword(dummyHash, password)
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	fields, err := s.Validator.Struct(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "validate", err)
	}
	if len(fields) > 0 {
		l.Warn("register_error", "status", 400, "reason", "validation", "fields", fields)
		return nil, registerValidationError(fields)
	}

	role := models.RoleUser
	if s.AllowRoleSignup && req.Role != "" {
		role = req.Role
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apperr.Wrap(apperr.ErrInternal, "Error registering user", err)
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			l.Warn("register_error", "status", 400, "reason", apperr.Message(err))
		} else {
			l.Error("register_error", "status", 500, "error", err)
		}
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID, "role", user.Role)
	publish(ctx, s.Events, TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":     "user_registered",
		"userId":   user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	pub := user.Public()
	return &pub, nil
}

func registerValidationError(fields map[string]string) error {
	for _, f := range []string{"username", "email", "password"} {
		if tag, ok := fields[f]; ok && tag != "min" {
			return apperr.New(apperr.ErrValidation, "All fields are required")
		}
	}
	if fields["password"] == "min" {
		return apperr.New(apperr.ErrValidation, "Password must be at least 6 characters")
	}
	return apperr.New(apperr.ErrValidation, "Invalid role")
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", req.Username)

	fields, err := s.Validator.Struct(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "validate", err)
	}
	if len(fields) > 0 {
		return nil, apperr.New(apperr.ErrValidation, "Username and password are required")
	}

	user, err := s.Repo.UserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			burnCompare(req.Password)
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, errInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.ErrInternal, "Error logging in", err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, errInvalidCredentials
	}

	token, claims, err := s.Tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apperr.Wrap(apperr.ErrInternal, "Error logging in", err)
	}

	l.Info("login_successful", "user_id", user.ID)
	publish(ctx, s.Events, TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_logged_in",
		"userId": user.ID,
	})

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.Public(),
	}, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (*tokens.Claims, error) {
	if token == "" {
		return nil, errNoToken
	}

	claims, err := s.Tokens.Parse(token)
	if err != nil {
		logging.FromContext(ctx).Debug("token_rejected", "error", err)
		return nil, errBadToken
	}

	if s.Denylist != nil && claims.ID != "" {
		revoked, err := s.Denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			logging.FromContext(ctx).Error("denylist_lookup_failed", "error", err)
			return nil, apperr.Wrap(apperr.ErrInternal, "verify token", err)
		}
		if revoked {
			return nil, errRevokedToken
		}
	}
	return claims, nil
}

func RequireRole(claims *tokens.Claims, role string) error {
	if claims == nil || claims.Role != role {
		if role == models.RoleAdmin {
			return apperr.New(apperr.ErrForbidden, "Admin access required")
		}
		return apperr.Newf(apperr.ErrForbidden, "Role %s required", role)
	}
	return nil
}

// Logout revokes the token for the rest of its lifetime when a denylist is configured.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	if s.Denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	now := time.Now()
	if s.Tokens.Now != nil {
		now = s.Tokens.Now()
	}
	if err := s.Denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(now)); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "status", 500, "reason", "cannot revoke token", "error", err)
		return apperr.Wrap(apperr.ErrInternal, "logout", err)
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
