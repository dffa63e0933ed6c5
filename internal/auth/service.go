package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternalError      = errors.New("internal server error")
)

type Service interface {
	Login(ctx context.Context, loginOrEmail, password string) (accessToken, refreshToken string, err error)
	RefreshTokens(ctx context.Context, userID, hashToken string) (accessToken, refreshToken string, err error)
	Logout(ctx context.Context, userID, hashToken string) error
	RefreshTTL() int
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	userService user.Service
	jwtManager  JWTManagerInterface
	log         *logrus.Entry
}

func NewAuthService(userService user.Service, jwtManager JWTManagerInterface, log *logrus.Entry) Service {
	return &service{
		userService: userService,
		jwtManager:  jwtManager,
		log:         log,
	}
}

// RefreshTTL is the refresh cookie lifetime in seconds.
func (s *service) RefreshTTL() int {
	return int(s.jwtManager.RefreshTTL().Seconds())
}

func (s *service) Login(ctx context.Context, loginOrEmail, password string) (string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}
		s.log.WithError(err).Error("failed to load user for login")
		return "", "", ErrInternalError
	}

	if !user.PasswordsMatch(existingUser.PasswordHash, password) {
		s.log.WithField("user_id", existingUser.ID).Warn("login with wrong password")
		return "", "", ErrInvalidCredentials
	}

	return s.issueTokens(existingUser)
}

// RefreshTokens rotates the hash token the presented refresh token was bound
// to, so each refresh token is accepted once.
func (s *service) RefreshTokens(ctx context.Context, userID, hashToken string) (string, string, error) {
	next, err := s.rotate(ctx, userID, hashToken)
	if err != nil {
		return "", "", err
	}
	return s.issueTokens(&user.User{ID: userID, HashToken: next})
}

// Logout revokes every outstanding refresh token of the user.
func (s *service) Logout(ctx context.Context, userID, hashToken string) error {
	_, err := s.rotate(ctx, userID, hashToken)
	return err
}

func (s *service) rotate(ctx context.Context, userID, hashToken string) (string, error) {
	next, err := s.userService.RotateHashToken(ctx, userID, hashToken)
	if err != nil {
		if errors.Is(err, user.ErrStaleHashToken) || errors.Is(err, user.ErrUserNotFound) {
			s.log.WithField("user_id", userID).Warn("refresh token already revoked")
			return "", ErrInvalidCredentials
		}
		return "", ErrInternalError
	}
	return next, nil
}

func (s *service) issueTokens(u *user.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateAccessJWT(u.ID)
	if err != nil {
		s.log.WithError(err).Error("failed to sign access token")
		return "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(u.ID, u.HashToken)
	if err != nil {
		s.log.WithError(err).Error("failed to sign refresh token")
		return "", "", ErrInternalError
	}
	return accessToken, refreshToken, nil
}
