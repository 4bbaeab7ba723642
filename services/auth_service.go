package services

import (
	"context"
	"errors"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService defines signup, login, logout and token-refresh semantics.
// Every success path that issues tokens also overwrites the user's stored
// refresh token, so only the latest session can refresh.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, *TokenPair, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, *TokenPair, *ServiceError)
	Logout(ctx context.Context, refreshToken string) *ServiceError
	Refresh(ctx context.Context, refreshToken string) (string, *ServiceError)
}

type authServiceImpl struct {
	users  repository.UserRepository
	tokens *TokenService
	store  repository.TokenStore
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *TokenService, store repository.TokenStore, logger *zap.Logger) AuthService {
	return &authServiceImpl{users: users, tokens: tokens, store: store, logger: logger}
}

// Signup creates a user, rejecting duplicate emails, and starts a session.
func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, *TokenPair, *ServiceError) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, nil, badRequest("User already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, nil, internal("Failed to create user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, internal("Failed to hash password")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     models.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Unique email index closes the lookup/insert race.
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, badRequest("User already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, nil, internal("Failed to create user")
	}

	pair, svcErr := s.startSession(ctx, user)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	s.logger.Info("User signed up", zap.String("user_id", user.ID.Hex()))
	return user, pair, nil
}

// Login validates credentials; token issuance happens iff the bcrypt check
// passes. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (s *authServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.User, *TokenPair, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, unauthorized("Invalid email or password")
		}
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, nil, internal("Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, unauthorized("Invalid email or password")
	}

	pair, svcErr := s.startSession(ctx, user)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.Hex()))
	return user, pair, nil
}

// Logout invalidates the stored refresh token for the session's user. An
// unparsable cookie is not an error; there is simply nothing to invalidate.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) *ServiceError {
	if refreshToken == "" {
		return nil
	}

	userID, err := s.tokens.ValidateToken(refreshToken, "refresh")
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		s.logger.Error("Failed to delete refresh token", zap.String("user_id", userID), zap.Error(err))
		return internal("Failed to log out")
	}
	return nil
}

// Refresh validates the presented refresh token against the stored value and
// mints a new access token only. Absent or expired stored tokens are 401;
// a mismatch is 403.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (string, *ServiceError) {
	if refreshToken == "" {
		return "", unauthorized("No refresh token provided")
	}

	userID, err := s.tokens.ValidateToken(refreshToken, "refresh")
	if err != nil {
		return "", unauthorized("Invalid refresh token")
	}

	stored, err := s.store.Get(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to read stored refresh token", zap.String("user_id", userID), zap.Error(err))
		return "", internal("Failed to refresh token")
	}
	if stored == "" {
		return "", unauthorized("Session expired")
	}
	if stored != refreshToken {
		return "", forbidden("Invalid refresh token")
	}

	accessToken, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.String("user_id", userID), zap.Error(err))
		return "", internal("Failed to refresh token")
	}
	return accessToken, nil
}

func (s *authServiceImpl) startSession(ctx context.Context, user *models.User) (*TokenPair, *ServiceError) {
	pair, err := s.tokens.GenerateTokenPair(user.ID.Hex())
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, internal("Failed to generate tokens")
	}
	if err := s.store.Set(ctx, user.ID.Hex(), pair.RefreshToken, RefreshTokenTTL); err != nil {
		s.logger.Error("Failed to store refresh token", zap.Error(err))
		return nil, internal("Failed to store session")
	}
	return pair, nil
}
