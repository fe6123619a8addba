package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/ids"
)

const refreshTokenLength = 64

const refreshTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var refreshTokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{64}$`)

type AccessClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTTokenService implements domain.TokenService. Access tokens are signed
// HS512 JWTs carrying userId+sessionId; refresh tokens are opaque random
// strings authenticated only by repository lookup.
type JWTTokenService struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewJWTTokenService(secret, issuer, audience string, accessTTL time.Duration) *JWTTokenService {
	return &JWTTokenService{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

func (s *JWTTokenService) GenerateAccessToken(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        ids.New(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (s *JWTTokenService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenLength)
	max := big.NewInt(int64(len(refreshTokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate refresh token: %w", err)
		}
		buf[i] = refreshTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func (s *JWTTokenService) VerifyAccessToken(tokenStr string) (*domain.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired()
		}
		return nil, domain.ErrInvalidToken()
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken()
	}
	return toTokenClaims(claims), nil
}

func (s *JWTTokenService) VerifyRefreshToken(token string) bool {
	return refreshTokenPattern.MatchString(token)
}

// DecodeToken parses without verifying the signature.
func (s *JWTTokenService) DecodeToken(tokenStr string) (*domain.TokenClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, domain.ErrInvalidToken()
	}
	return toTokenClaims(claims), nil
}

// TokenExpirationTime returns the remaining lifetime of a token, or false
// when the token cannot be decoded or carries no expiry.
func (s *JWTTokenService) TokenExpirationTime(tokenStr string) (time.Duration, bool) {
	claims, err := s.DecodeToken(tokenStr)
	if err != nil || claims.ExpiresAt.IsZero() {
		return 0, false
	}
	remaining := time.Until(claims.ExpiresAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func toTokenClaims(claims *AccessClaims) *domain.TokenClaims {
	out := &domain.TokenClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Issuer:    claims.Issuer,
	}
	if claims.UserID == "" {
		out.UserID = claims.Subject
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if len(claims.Audience) > 0 {
		out.Audience = claims.Audience[0]
	}
	return out
}
