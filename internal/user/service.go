package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength    = 255
	minEmailLength    = 3
	maxLoginLength    = 30
	minLoginLength    = 3
	maxNameLength     = 100
	minPasswordLength = 6
	bcryptCost        = 12
)

var (
	ErrInvalidEmail       = fmt.Errorf("email address is not valid")
	ErrEmailLength        = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrLoginLength        = fmt.Errorf("login is too long or too short, max length: %d, min length: %d", maxLoginLength, minLoginLength)
	ErrNameLength         = fmt.Errorf("name is too long, max length: %d", maxNameLength)
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrLoginAlreadyExists = errors.New("login already exists")
	ErrInternalError      = errors.New("internal Server Error")
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	HashToken    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Service interface {
	Register(ctx context.Context, name, email, login, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	RotateHashToken(ctx context.Context, userID, current string) (string, error)
}

type service struct {
	repo Repository
	log  *logrus.Entry
}

func NewUserService(repo Repository, log *logrus.Entry) Service {
	return &service{
		repo: repo,
		log:  log,
	}
}

func HashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func PasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	_, err := rand.Read(token)
	if err != nil {
		return "", fmt.Errorf("could not generate hash token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

func (s *service) Register(ctx context.Context, name, email, login, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		return nil, ErrNameLength
	}

	login = strings.TrimSpace(login)
	if len(login) == 0 {
		login = strings.Split(email, "@")[0]
	}
	if len(login) > maxLoginLength || len(login) < minLoginLength {
		return nil, ErrLoginLength
	}

	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existingUser, err := s.repo.userExistsByLoginOrEmail(ctx, login, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.log.WithError(err).Error("failed to check existing user")
		return nil, ErrInternalError
	}
	if existingUser != nil {
		if existingUser.Email == email {
			return nil, ErrEmailAlreadyExists
		}
		return nil, ErrLoginAlreadyExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		s.log.WithError(err).Error("failed to hash password")
		return nil, ErrInternalError
	}

	hashToken, err := generateHashToken()
	if err != nil {
		s.log.WithError(err).Error("failed to generate hash token")
		return nil, ErrInternalError
	}

	user := &User{
		Name:         name,
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}

	if err := s.repo.createUser(ctx, user); err != nil {
		s.log.WithError(err).Error("failed to create user")
		return nil, ErrInternalError
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.getUserByID(ctx, userID)
}

func (s *service) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return s.repo.getUserByLoginOrEmail(ctx, strings.TrimSpace(loginOrEmail))
}

// RotateHashToken replaces the user's hash token, revoking every refresh token
// bound to current. It returns ErrStaleHashToken when current is no longer the
// stored token.
func (s *service) RotateHashToken(ctx context.Context, userID, current string) (string, error) {
	next, err := generateHashToken()
	if err != nil {
		s.log.WithError(err).Error("failed to generate hash token")
		return "", ErrInternalError
	}
	if err := s.repo.swapHashToken(ctx, userID, current, next); err != nil {
		if errors.Is(err, ErrStaleHashToken) || errors.Is(err, ErrUserNotFound) {
			return "", err
		}
		s.log.WithError(err).WithField("user_id", userID).Error("failed to rotate hash token")
		return "", ErrInternalError
	}
	return next, nil
}
