package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"murmur/internal/core/domain"
	"murmur/pkg/logging"
)

var tokenTracer = otel.Tracer("token-service")

type tokenClaims struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secretKey []byte
	issuer    string
	revoked   domain.TokenRepository
	log       *slog.Logger
}

// NewTokenService verifies HS256 tokens. revoked may be nil when no blacklist is kept.
func NewTokenService(log *slog.Logger, secret string, revoked domain.TokenRepository) *TokenService {
	return &TokenService{
		secretKey: []byte(secret),
		issuer:    "murmur",
		revoked:   revoked,
		log:       log,
	}
}

func (s *TokenService) IssueToken(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Verify parses the token and checks expiry, revocation and the expected type.
// An empty expectedType accepts any type.
func (s *TokenService) Verify(ctx context.Context, tokenStr, expectedType string) (*domain.Identity, error) {
	ctx, span := tokenTracer.Start(ctx, "TokenService.Verify")
	defer span.End()

	if tokenStr == "" {
		return nil, domain.ErrTokenMissing
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if claims.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}
	if expectedType != "" && claims.Type != expectedType {
		return nil, domain.ErrTokenType
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, tokenStr)
		if err != nil {
			span.RecordError(err)
			s.log.ErrorContext(ctx, "token - verify - revocation check failed", logging.User(claims.UserID), logging.Err(err))
			return nil, fmt.Errorf("token - revocation check: %w", err)
		}
		if revoked {
			return nil, domain.ErrTokenRevoked
		}
	}
	return &domain.Identity{UserID: claims.UserID, TokenType: claims.Type}, nil
}
