package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// AccessTokenTTL bounds how long a minted access token authorizes requests.
	AccessTokenTTL = 15 * time.Minute
	// RefreshTokenTTL bounds both the refresh JWT and its Redis record.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrTokenExpired distinguishes an expired-but-otherwise-valid token from a
// malformed or forged one, so clients know a refresh is worth attempting.
var ErrTokenExpired = errors.New("token expired")

// TokenPair holds the generated access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService creates and validates the HS256 JWTs used for sessions.
type TokenService struct {
	secretKey []byte
}

// NewTokenService creates a new TokenService with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secretKey: []byte(secret)}
}

// GenerateTokenPair creates a new access and refresh token pair for a user.
func (s *TokenService) GenerateTokenPair(userID string) (*TokenPair, error) {
	accessToken, err := s.generateToken(userID, "access", AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateToken(userID, "refresh", RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// GenerateAccessToken mints a new access token only, used by the refresh
// flow; the refresh token itself is left unchanged.
func (s *TokenService) GenerateAccessToken(userID string) (string, error) {
	return s.generateToken(userID, "access", AccessTokenTTL)
}

// ValidateToken parses a token and returns the user ID it was issued to.
// Expired tokens return ErrTokenExpired; any other failure returns a generic
// error.
func (s *TokenService) ValidateToken(tokenStr, expectedType string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("invalid token")
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != expectedType {
		return "", fmt.Errorf("invalid token type")
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("invalid token subject")
	}
	return userID, nil
}

func (s *TokenService) generateToken(userID, tokenType string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"typ": tokenType,
		"exp": time.Now().Add(duration).Unix(),
		"iat": time.Now().Unix(),
	}
	if tokenType == "refresh" {
		claims["jti"] = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}
