package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/listenupapp/recipebox-server/internal/auth"
	"github.com/listenupapp/recipebox-server/internal/domain"
	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/store"
	"github.com/listenupapp/recipebox-server/internal/validation"
)

// UserService handles accounts: registration, login, token verification
// and self-service profile changes.
type UserService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st store.Store, tokens *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     st,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRequest contains the fields of a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"notblank,maxrunes=20"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is a partial profile change. Nil fields are untouched;
// a new password is rehashed.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitnil,email,max=254"`
	Name     *string `json:"name" validate:"omitnil,notblank,maxrunes=20"`
	Password *string `json:"password" validate:"omitnil,min=8,max=1024"`
}

// LoginResult carries an issued access token.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *domain.User
}

var errBadCredentials = domainerrors.InvalidCredentials(
	"unable to log in with the provided credentials",
)

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req, false)
}

// CreateSuperuser creates an account with staff and superuser flags set.
func (s *UserService) CreateSuperuser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req, true)
}

func (s *UserService) create(ctx context.Context, req RegisterRequest, admin bool) (*domain.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      admin,
		IsSuperuser:  admin,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a user with this email already exists").
				WithDetails(map[string]string{"email": "is already registered"})
		}
		return nil, err
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"superuser", admin,
	)
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails,
// wrong passwords and inactive accounts all fail the same way.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) || !user.IsActive {
		s.logger.Info("login rejected", "user_id", user.ID, "active", user.IsActive)
		return nil, errBadCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresIn: s.tokens.Duration(), User: user}, nil
}

// Authenticate resolves a bearer token to a principal. The account must
// still exist and be active.
func (s *UserService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Anonymous(), domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Anonymous(), domainerrors.Unauthorized("invalid or expired token")
	}
	if err != nil {
		return domain.Anonymous(), err
	}
	if !user.IsActive {
		return domain.Anonymous(), domainerrors.Unauthorized("account is disabled")
	}
	return domain.AuthenticatedAs(user.ID), nil
}

// Get returns a user by ID. Any authenticated caller may read profiles.
func (s *UserService) Get(ctx context.Context, principal domain.Principal, userID int64) (*domain.User, error) {
	if !principal.Authenticated {
		return nil, errUnauthenticated
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}
	return user, nil
}

// List returns users whose id, email or name contains search.
func (s *UserService) List(ctx context.Context, principal domain.Principal, search string) ([]*domain.User, error) {
	if !principal.Authenticated {
		return nil, errUnauthenticated
	}
	return s.store.ListUsers(ctx, strings.TrimSpace(search))
}

// Update changes the principal's own profile.
func (s *UserService) Update(ctx context.Context, principal domain.Principal, userID int64, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.self(ctx, principal, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		normalized := domain.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, domainerrors.Validation(err.Error())
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a user with this email already exists").
				WithDetails(map[string]string{"email": "is already registered"})
		}
		return nil, translateStoreError(err, "user")
	}

	s.logger.Info("user updated",
		"user_id", user.ID,
		"password_changed", req.Password != nil,
	)
	return user, nil
}

// Replace overwrites email, name and password of the principal's own account.
func (s *UserService) Replace(ctx context.Context, principal domain.Principal, userID int64, req RegisterRequest) (*domain.User, error) {
	if _, err := s.self(ctx, principal, userID); err != nil {
		return nil, err
	}
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.Update(ctx, principal, userID, UpdateUserRequest{
		Email:    &req.Email,
		Name:     &req.Name,
		Password: &req.Password,
	})
}

// Delete removes the principal's own account with everything it owns.
func (s *UserService) Delete(ctx context.Context, principal domain.Principal, userID int64) error {
	if _, err := s.self(ctx, principal, userID); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return translateStoreError(err, "user")
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// self loads userID and requires it to be the principal.
func (s *UserService) self(ctx context.Context, principal domain.Principal, userID int64) (*domain.User, error) {
	if !principal.Authenticated {
		return nil, errUnauthenticated
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}
	if !principal.Is(user.ID) {
		return nil, domainerrors.Forbidden("you may only change your own account")
	}
	return user, nil
}
