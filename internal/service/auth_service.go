package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/domain"
	"github.com/jmartin/coursehub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Mailer delivers the one-time activation code. Delivery failure fails the
// registration request; no ticket is considered valid without a sent mail.
type Mailer interface {
	SendActivationEmail(ctx context.Context, email, firstName, code string) error
}

// UploadedImage is a stored media object reference.
type UploadedImage struct {
	PublicID string
	URL      string
}

// MediaStore is the external media host used for avatars and thumbnails.
type MediaStore interface {
	UploadImage(ctx context.Context, data []byte, folder string) (*UploadedImage, error)
	DeleteImage(ctx context.Context, publicID string) error
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	mailer   Mailer
	media    MediaStore
	cfg      config.AuthConfig
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, mailer Mailer, media MediaStore, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		media:    media,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type AuthResult struct {
	User   *domain.User
	Tokens *TokenPair
}

type activationClaims struct {
	User RegisterInput `json:"user"`
	Code string        `json:"activationCode"`
	jwt.RegisteredClaims
}

func (in RegisterInput) validate() error {
	if in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	}
	if !domain.ValidEmail(in.Email) {
		return fmt.Errorf("%w: please enter a valid email address", domain.ErrValidation)
	}
	if len(in.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	return nil
}

// RequestActivation checks email uniqueness, bundles the pending registration
// and a one-time code into a signed short-lived ticket, and emails the code.
// The user is not persisted until Activate succeeds.
func (s *AuthService) RequestActivation(ctx context.Context, input RegisterInput) (string, error) {
	if err := input.validate(); err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return "", domain.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("lookup email: %w", err)
	}

	code, err := activationCode()
	if err != nil {
		return "", fmt.Errorf("generate activation code: %w", err)
	}

	now := time.Now()
	claims := activationClaims{
		User: input,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ActivationTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	ticket, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.ActivationSecret))
	if err != nil {
		return "", fmt.Errorf("sign activation ticket: %w", err)
	}

	if err := s.mailer.SendActivationEmail(ctx, input.Email, input.FirstName, code); err != nil {
		return "", fmt.Errorf("send activation email: %w", err)
	}

	return ticket, nil
}

// Activate consumes an activation ticket. The email uniqueness check runs
// again here to guard against a registration racing in between ticket
// issuance and activation.
func (s *AuthService) Activate(ctx context.Context, ticket, code string) (*domain.User, error) {
	var claims activationClaims
	token, err := jwt.ParseWithClaims(ticket, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.ActivationSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrTicketInvalid
	}

	if claims.Code != code {
		return nil, domain.ErrCodeMismatch
	}

	if _, err := s.userRepo.GetByEmail(ctx, claims.User.Email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := hashPassword(claims.User.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		FirstName:    claims.User.FirstName,
		LastName:     claims.User.LastName,
		Email:        claims.User.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsVerified:   true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

type SocialAuthInput struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

// SocialAuth logs in an externally authenticated user, creating a verified
// password-less record on first sight of the email.
func (s *AuthService) SocialAuth(ctx context.Context, input SocialAuthInput) (*AuthResult, error) {
	if !domain.ValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: please enter a valid email address", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &domain.User{
			ID:         uuid.New(),
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Email:      input.Email,
			Avatar:     domain.Avatar{URL: input.AvatarURL},
			Role:       domain.RoleUser,
			IsVerified: true,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh validates a refresh token against the Session Cache and rotates
// the pair. A missing cache entry forces a re-login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.tokens.Session(ctx, userID)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.ClearSession(ctx, userID)
}

// GetUser serves the cached session snapshot when present, falling back to
// the store.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if user, err := s.tokens.Session(ctx, userID); err == nil {
		return user, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateInfoInput struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

func (s *AuthService) UpdateInfo(ctx context.Context, userID uuid.UUID, input UpdateInfoInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != "" && input.Email != user.Email {
		if !domain.ValidEmail(input.Email) {
			return nil, fmt.Errorf("%w: please enter a valid email address", domain.ErrValidation)
		}
		if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
			return nil, domain.ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = input.Email
	}
	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.tokens.RefreshSession(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdatePassword hashes exactly once, here, before the store call.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) (*domain.User, error) {
	if oldPassword == "" || newPassword == "" {
		return nil, fmt.Errorf("%w: old and new password are required", domain.ErrValidation)
	}
	if len(newPassword) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	// Social-auth users have no password to compare against.
	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.tokens.RefreshSession(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateAvatar replaces the user's avatar on the media host, deleting the
// previous image first.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, image []byte) (*domain.User, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: avatar image is required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if user.Avatar.PublicID != "" {
		if err := s.media.DeleteImage(ctx, user.Avatar.PublicID); err != nil {
			return nil, fmt.Errorf("delete old avatar: %w", err)
		}
	}

	uploaded, err := s.media.UploadImage(ctx, image, "avatars")
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	user.Avatar = domain.Avatar{PublicID: uploaded.PublicID, URL: uploaded.URL}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.tokens.RefreshSession(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// activationCode draws a uniform 4-digit one-time code.
func activationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(1000+n.Int64(), 10), nil
}
