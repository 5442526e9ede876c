package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/portfolio-api/internal/auth"
	"github.com/yukikurage/portfolio-api/internal/models"
	"github.com/yukikurage/portfolio-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrInvalidToken         = errors.New("could not validate credentials")
	ErrInactiveUser         = errors.New("inactive user")
	ErrAdminRequired        = errors.New("admin access required")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID         uint64
	Email          string
	Role           models.Role
	TokenID        string
	TokenExpiresAt time.Time
}

// IsAdmin reports whether the identity may use admin-only endpoints.
func (i *Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// AuthService handles registration, credential checks and bearer tokens.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RegisterInput represents the information needed to create a new user.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// Register validates the input and creates a user with the default role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)

	var fields []FieldError
	if fe := ValidateEmail(email); fe != nil {
		fields = append(fields, *fe)
	}
	fields = append(fields, ValidatePassword(input.Password)...)
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid registration data", Fields: fields}
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// usernames are stored and matched byte for byte
	var username *string
	if input.Username != "" {
		username = &input.Username
	}
	if username != nil {
		if _, err := s.userRepo.FindByUsername(ctx, *username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FullName:     optionalString(input.FullName),
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		Role:         models.RoleUser,
		Portfolios:   models.IdentifierList{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent registration
			if _, findErr := s.userRepo.FindByEmail(ctx, email); findErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// Authenticate returns the user matching the credentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// LoginResult carries an issued access token.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

// Login authenticates the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

// VerifyToken resolves a bearer token to the identity of an active user. The
// role is read from the user record, not from the token.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return &Identity{
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Role,
		TokenID:        claims.ID,
		TokenExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the token the identity was resolved from.
func (s *AuthService) Logout(ctx context.Context, identity *Identity) error {
	if err := s.tokens.Revoke(ctx, identity.TokenID, identity.TokenExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListUsers returns every user. Only admins may call it.
func (s *AuthService) ListUsers(ctx context.Context, caller *Identity) ([]models.User, error) {
	if caller == nil || !caller.IsAdmin() {
		return nil, ErrAdminRequired
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// EnsureAdmin makes sure an admin account exists for the given credentials,
// creating it or promoting the existing user.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == models.RoleAdmin {
			return nil
		}
		if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
		logrus.WithField("user_id", user.ID).Info("Promoted existing user to admin")
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to find admin: %w", err)
	}

	user, err = s.Register(ctx, RegisterInput{Email: email, Password: password})
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("Created admin user")
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
