package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/addkelime/kelime-server/internal/db"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, db.DriverSQLite))

	return NewService(NewUserStore(conn, db.DriverSQLite), Config{
		Secret:     testSecret,
		TTL:        time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	sess, err := svc.Register(ctx, " ayse@example.com ", "gizli123", "Ayşe_34")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "ayse@example.com", sess.User.Email)
	assert.Equal(t, "Ayşe_34", sess.User.Username)
	assert.NotEqual(t, "gizli123", sess.User.PasswordHash)
	assert.NotEmpty(t, sess.Token)

	claims, err := Verify(testSecret, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, "Ayşe_34", claims.Username)

	got, err := svc.Login(ctx, "AYSE@example.com", "gizli123")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, got.User.ID)

	_, err = svc.Login(ctx, "ayse@example.com", "yanlis")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "gizli123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := svc.Me(ctx, Identity{UserID: sess.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe_34", me.Username)
}

func TestRegister_Duplicates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "ali@example.com", "gizli123", "ali")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ALI@example.com", "gizli123", "veli")
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, "veli@example.com", "gizli123", "ALI")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserStore_CreateMapsUniqueViolations(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, db.DriverSQLite))
	users := NewUserStore(conn, db.DriverSQLite)

	user := func(id, email, username string) *User {
		return &User{ID: id, Email: email, Username: username, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	}
	require.NoError(t, users.Create(ctx, user("u1", "ali@example.com", "ali")))

	// Both signups passed the lookups before either insert landed.
	err = users.Create(ctx, user("u2", "ali@example.com", "veli"))
	require.ErrorIs(t, err, ErrEmailTaken)
	err = users.Create(ctx, user("u3", "ALI@example.com", "veli"))
	require.ErrorIs(t, err, ErrEmailTaken, "emails are unique case-insensitively")

	err = users.Create(ctx, user("u4", "veli@example.com", "ali"))
	require.ErrorIs(t, err, ErrUsernameTaken)
	err = users.Create(ctx, user("u5", "veli@example.com", "Ali"))
	require.ErrorIs(t, err, ErrUsernameTaken, "usernames are unique case-insensitively")
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t)
	cases := map[string][3]string{
		"bad email":      {"not-an-email", "gizli123", "ali"},
		"short username": {"a@example.com", "gizli123", "al"},
		"symbols":        {"a@example.com", "gizli123", "ali!"},
		"short password": {"a@example.com", "123", "ali"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), in[0], in[1], in[2])
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestVerify_Rejects(t *testing.T) {
	expired, _, err := Sign(testSecret, "u1", "ali", -time.Minute)
	require.NoError(t, err)
	_, err = Verify(testSecret, expired)
	require.Error(t, err)

	good, _, err := Sign(testSecret, "u1", "ali", time.Minute)
	require.NoError(t, err)
	_, err = Verify([]byte("other"), good)
	require.Error(t, err)

	_, err = Verify(testSecret, "garbage")
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	sess, err := svc.Register(ctx, "can@example.com", "gizli123", "can")
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := FromContext(r.Context()); ok {
			_, _ = w.Write([]byte(id.Username))
			return
		}
		_, _ = w.Write([]byte("anon"))
	})

	do := func(h http.Handler, mutate func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if mutate != nil {
			mutate(req)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sess.Token) }
	cookie := func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "kelime_token", Value: sess.Token}) }
	bad := func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }

	assert.Equal(t, "anon", do(svc.Optional(echo), nil).Body.String())
	assert.Equal(t, "can", do(svc.Optional(echo), bearer).Body.String())
	assert.Equal(t, "can", do(svc.Optional(echo), cookie).Body.String())
	assert.Equal(t, "anon", do(svc.Optional(echo), bad).Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(svc.Require(echo), nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(svc.Require(echo), bad).Code)
	rec := do(svc.Require(echo), bearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "can", rec.Body.String())

	ghost, _, err := Sign(testSecret, "deleted-user", "ghost", time.Minute)
	require.NoError(t, err)
	rec = do(svc.Require(echo), func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) })
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "token for a user that no longer exists")
}

func TestCookies(t *testing.T) {
	svc := newTestService(t)

	rec := httptest.NewRecorder()
	svc.SetCookie(rec, "tok", time.Now().Add(time.Hour))
	c := rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, "kelime_token", c[0].Name)
	assert.Equal(t, "tok", c[0].Value)
	assert.True(t, c[0].HttpOnly)

	rec = httptest.NewRecorder()
	svc.ClearCookie(rec)
	c = rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, -1, c[0].MaxAge)
}
