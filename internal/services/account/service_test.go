package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tvcatalog/internal/config"
	"tvcatalog/internal/store/memory"
	"tvcatalog/internal/store/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewService(store.Users(), config.SecurityCfg{
		JWTSecret:     "test-secret",
		TokenLifetime: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
	return svc, store
}

func TestRegister(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.Admin)
	assert.Empty(t, u.Password)

	stored, err := store.Users().FindByUsername(ctx, "jane")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse")))
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "short"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestRegister_LongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	password := strings.Repeat("a", 100)

	_, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: password})
	require.NoError(t, err)

	_, err = svc.CheckCredentials(ctx, "jane", password)
	assert.NoError(t, err)
	_, err = svc.CheckCredentials(ctx, "jane", strings.Repeat("b", 100))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	newPassword := strings.Repeat("c", 200)
	u, err := svc.ByUsername(ctx, "jane")
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, u.ID, nil, &newPassword)
	require.NoError(t, err)
	_, err = svc.CheckCredentials(ctx, "jane", newPassword)
	assert.NoError(t, err)
}

func TestRegister_PasswordLengthCountsCharacters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 200 characters, 400 bytes
	password := strings.Repeat("é", 200)
	_, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: password})
	require.NoError(t, err)
	_, err = svc.CheckCredentials(ctx, "jane", password)
	assert.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "joe", Email: "joe@example.org", Password: strings.Repeat("é", 257)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestCheckCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)

	u, err := svc.CheckCredentials(ctx, "jane", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "jane", u.Username)

	_, err = svc.CheckCredentials(ctx, "jane", "battery staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.CheckCredentials(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCheckCredentials_StoreFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.Fail = errors.New("connection reset")

	_, err := svc.CheckCredentials(context.Background(), "jane", "correct horse")
	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestToken_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)

	resp, err := svc.IssueToken(u)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	got, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)
	resp, err := svc.IssueToken(u)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewService(nil, config.SecurityCfg{JWTSecret: "other-secret", BcryptCost: bcrypt.MinCost})
		_, err := other.Authenticate(ctx, resp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := *svc
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Authenticate(ctx, resp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost := *u
		ghost.ID = 9999
		ghostResp, err := svc.IssueToken(&ghost)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, ghostResp.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)

	email := " jane@example.com "
	updated, err := svc.UpdateProfile(ctx, u.ID, &email, nil)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", updated.Email)

	password := "battery staple"
	_, err = svc.UpdateProfile(ctx, u.ID, nil, &password)
	require.NoError(t, err)
	_, err = svc.CheckCredentials(ctx, "jane", "battery staple")
	assert.NoError(t, err)
}

func TestSetAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin, err := svc.Register(ctx, RegisterRequest{Username: "admin", Email: "admin@example.org", Password: "correct horse"})
	require.NoError(t, err)
	jane, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.SetAdmin(ctx, admin.ID, admin.ID, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "admin cannot change self", verr.Message)

	got, err := svc.SetAdmin(ctx, admin.ID, jane.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Admin)
}

func TestLookups(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	jane, err := svc.Register(ctx, RegisterRequest{Username: "jane", Email: "jane@example.org", Password: "correct horse"})
	require.NoError(t, err)

	got, err := svc.User(ctx, jane.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Password)

	_, err = svc.User(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	byEmail, err := svc.ByEmail(ctx, "jane@example.org")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, byEmail.ID)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Password)
}
