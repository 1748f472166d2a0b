package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kunjungan/internal/models"
)

const testSecret = "test-secret-at-least-32-characters-long"

type userRepoStub struct {
	getByIDFn        func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn     func(ctx context.Context, email string) (*models.User, error)
	createFn         func(ctx context.Context, user *models.User) error
	updatePasswordFn func(ctx context.Context, id uint, hash string) error
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(context.Context, uint) (*models.User, error) {
			return nil, models.NewNotFoundError("Pengguna tidak ditemukan")
		},
		getByEmailFn:     func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:         func(context.Context, *models.User) error { return nil },
		updatePasswordFn: func(context.Context, uint, string) error { return nil },
	}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}

func (s *userRepoStub) List(context.Context) ([]models.User, error) {
	return nil, nil
}

func adminWithPassword(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: 3, Email: "admin@dprd.lampungprov.go.id", Password: string(hash), Role: models.RoleAdmin}
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}

func TestAuthService_LoginAndParse(t *testing.T) {
	admin := adminWithPassword(t, "Rahasia!2025xx")
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == admin.Email {
			return admin, nil
		}
		return nil, nil
	}

	svc := NewAuthService(repo, nil, testSecret, time.Hour)
	token, user, err := svc.Login(context.Background(), admin.Email, "Rahasia!2025xx")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, user.ID)

	claims, err := svc.ParseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, admin.Email, claims.Email)
	assert.NotEmpty(t, claims.TokenID)
}

func TestAuthService_LoginFailures(t *testing.T) {
	admin := adminWithPassword(t, "Rahasia!2025xx")
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == admin.Email {
			return admin, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, nil, testSecret, time.Hour)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assertUnauthorized(t, err)
	assert.Equal(t, MsgInvalidCredentials, err.Error())

	_, _, err = svc.Login(context.Background(), admin.Email, "wrong-password")
	assertUnauthorized(t, err)
}

func TestAuthService_LoginUnknownEmailStillComparesHash(t *testing.T) {
	admin := adminWithPassword(t, "Rahasia!2025xx")
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email == admin.Email {
			return admin, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, nil, testSecret, time.Hour)

	var hashes [][]byte
	svc.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "Rahasia!2025xx")
	assertUnauthorized(t, err)
	require.Len(t, hashes, 1)
	assert.Equal(t, dummyHash(), hashes[0])
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	_, _, err = svc.Login(context.Background(), admin.Email, "wrong-password")
	assertUnauthorized(t, err)
	require.Len(t, hashes, 2)
	assert.Equal(t, []byte(admin.Password), hashes[1])
}

func TestAuthService_ParseRejectsTamperedTokens(t *testing.T) {
	admin := adminWithPassword(t, "Rahasia!2025xx")
	svc := NewAuthService(noopUserRepo(), nil, testSecret, time.Hour)

	token, err := svc.IssueToken(admin)
	require.NoError(t, err)

	other := NewAuthService(noopUserRepo(), nil, "another-secret-with-enough-length-123", time.Hour)
	_, err = other.ParseToken(context.Background(), token)
	assertUnauthorized(t, err)

	_, err = svc.ParseToken(context.Background(), token[:len(token)-2]+"xx")
	assertUnauthorized(t, err)

	_, err = svc.ParseToken(context.Background(), "not.a.token")
	assertUnauthorized(t, err)
}

func TestAuthService_ParseRejectsWrongAudienceAndExpiry(t *testing.T) {
	svc := NewAuthService(noopUserRepo(), nil, testSecret, time.Hour)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "3",
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{"someone-else"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.ParseToken(context.Background(), raw)
	assertUnauthorized(t, err)

	token, err := svc.IssueToken(&models.User{ID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseToken(context.Background(), token)
	assertUnauthorized(t, err)
}

func TestAuthService_RevokeBlacklistsToken(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	svc := NewAuthService(noopUserRepo(), rdb, testSecret, time.Hour)
	token, err := svc.IssueToken(&models.User{ID: 3, Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := svc.ParseToken(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(context.Background(), claims))

	ttl := mr.TTL("blacklist:" + claims.TokenID)
	assert.Greater(t, ttl, 59*time.Minute)

	_, err = svc.ParseToken(context.Background(), token)
	assertUnauthorized(t, err)
	assert.Equal(t, MsgTokenRevoked, err.Error())
}

func TestAuthService_CurrentUser(t *testing.T) {
	admin := adminWithPassword(t, "Rahasia!2025xx")
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == admin.ID {
			return admin, nil
		}
		return nil, models.NewNotFoundError("Pengguna tidak ditemukan")
	}
	svc := NewAuthService(repo, nil, testSecret, time.Hour)

	user, err := svc.CurrentUser(context.Background(), &Claims{UserID: admin.ID})
	require.NoError(t, err)
	assert.Equal(t, admin.Email, user.Email)

	_, err = svc.CurrentUser(context.Background(), &Claims{UserID: 99})
	assertUnauthorized(t, err)
}
