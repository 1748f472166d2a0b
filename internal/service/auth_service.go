package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"kunjungan/internal/cache"
	"kunjungan/internal/middleware"
	"kunjungan/internal/models"
	"kunjungan/internal/repository"
)

// Token issuer and audience of admin sessions.
const (
	TokenIssuer   = "kunjungan-api"
	TokenAudience = "kunjungan-admin"
)

// Messages returned by authentication failures.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidToken       = "Invalid or expired token"
	MsgTokenRevoked       = "Token has been revoked"
)

// Claims are the verified contents of an admin session token.
type Claims struct {
	UserID    uint
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// dummyHash is compared on unknown emails so both login failures cost one
// bcrypt comparison at the cost used for stored passwords.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("kunjungan-unknown-admin"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return h
})

// AuthService signs in admins and verifies their tokens.
type AuthService struct {
	users  repository.UserRepository
	redis  *redis.Client
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	// compare is bcrypt.CompareHashAndPassword outside tests.
	compare func(hash, password []byte) error
}

func NewAuthService(users repository.UserRepository, rdb *redis.Client, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:   users,
		redis:   rdb,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		compare: bcrypt.CompareHashAndPassword,
	}
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		_ = s.compare(dummyHash(), []byte(password))
		return "", nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}
	if err := s.compare([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, models.NewUnauthorizedError(MsgInvalidCredentials)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "Admin signed in", slog.Uint64("user_id", uint64(user.ID)))
	return token, user, nil
}

// IssueToken signs an HS256 session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies signature, issuer, audience, lifetime and revocation.
func (s *AuthService) ParseToken(ctx context.Context, raw string) (*Claims, error) {
	var tc tokenClaims
	token, err := jwt.ParseWithClaims(raw, &tc, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError(MsgInvalidToken)
	}

	userID, err := strconv.ParseUint(tc.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError(MsgInvalidToken)
	}

	claims := &Claims{
		UserID:    uint(userID),
		Email:     tc.Email,
		Role:      tc.Role,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time,
	}

	revoked, err := s.isRevoked(ctx, claims.TokenID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Token revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, models.NewUnauthorizedError(MsgTokenRevoked)
	}
	return claims, nil
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, cache.TokenBlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.TokenID == "" {
		return nil
	}
	if s.redis == nil {
		middleware.Logger.WarnContext(ctx, "Redis unavailable, token revocation skipped")
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, cache.TokenBlacklistKey(claims.TokenID), "1", remaining).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CurrentUser loads the account behind verified claims.
func (s *AuthService) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	if claims == nil {
		return nil, models.NewUnauthorizedError(MsgInvalidToken)
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, models.NewUnauthorizedError(MsgInvalidToken)
		}
		return nil, err
	}
	return user, nil
}
