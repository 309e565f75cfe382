package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"elite-app/internal/auth"
	"elite-app/internal/domain"
	"elite-app/internal/repository/sqlite"
)

type testEnv struct {
	users      UserService
	activities ActivityService
	stores     *sqlite.Stores
	tokens     *auth.TokenIssuer
	revoker    *auth.RedisRevoker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stores, err := sqlite.NewStores(context.Background(), db)
	require.NoError(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	revoker := auth.NewRedisRevoker(rdb, "test:")

	activities := NewActivityService(stores.Activities)
	return &testEnv{
		users:      NewUserService(stores.Users, activities, auth.NewPasswordHasher(bcrypt.MinCost), tokens, revoker),
		activities: activities,
		stores:     stores,
		tokens:     tokens,
		revoker:    revoker,
	}
}

func signup(t *testing.T, env *testEnv, name, email, role string) *domain.User {
	t.Helper()
	user, err := env.users.Signup(context.Background(), SignupInput{
		Name:            name,
		Email:           email,
		Role:            role,
		Password:        "pa55word",
		ConfirmPassword: "pa55word",
	})
	require.NoError(t, err)
	return user
}

func descriptions(t *testing.T, env *testEnv) []string {
	t.Helper()
	recent, err := env.activities.Recent(context.Background(), 100)
	require.NoError(t, err)
	out := make([]string, len(recent))
	for i, a := range recent {
		out[i] = a.Description
	}
	return out
}

func TestSignupThenLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	user := signup(t, env, "Ada", "Ada@Example.com ", "student")
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	res, err := env.users.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pa55word"})
	require.NoError(t, err)
	assert.Equal(t, "student", res.Role)

	claims, err := env.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.User.ID)

	assert.Equal(t, []string{"User Ada logged in.", "User Ada registered."}, descriptions(t, env))
}

func TestSignupPasswordMismatch(t *testing.T) {
	env := newTestEnv(t)

	cases := []SignupInput{
		{Name: "Ada", Email: "ada@example.com", Role: "student", Password: "a", ConfirmPassword: "b"},
		{Password: "a", ConfirmPassword: "b"},
		{Email: "not-an-email", Password: "", ConfirmPassword: "x"},
	}
	for _, in := range cases {
		_, err := env.users.Signup(context.Background(), in)
		require.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	}

	users, err := env.users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Empty(t, descriptions(t, env))
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.Signup(context.Background(), SignupInput{
		Name: "Ada", Email: "nope", Role: "student", Password: "p", ConfirmPassword: "p",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "email")
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first := signup(t, env, "Ada", "ada@example.com", "student")

	_, err := env.users.Signup(ctx, SignupInput{
		Name: "Impostor", Email: "ADA@example.com", Role: "admin", Password: "other", ConfirmPassword: "other",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	me, err := env.users.Me(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)
	assert.Equal(t, "student", me.Role)

	_, err = env.users.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pa55word"})
	assert.NoError(t, err)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := signup(t, env, "Ada", "ada@example.com", "student")

	stored, err := env.stores.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	res, err := env.users.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, res)

	after, err := env.stores.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.PasswordHash, after.PasswordHash)

	_, err = env.users.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "pa55word"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.users.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, []string{"User Ada registered."}, descriptions(t, env))
}

func TestLogoutRecordsAndRevokes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	signup(t, env, "Ada", "ada@example.com", "student")

	res, err := env.users.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pa55word"})
	require.NoError(t, err)
	claims, err := env.tokens.Verify(res.Token)
	require.NoError(t, err)

	require.NoError(t, env.users.Logout(ctx, claims))

	revoked, err := env.revoker.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, "User Ada logged out.", descriptions(t, env)[0])

	assert.ErrorIs(t, env.users.Logout(ctx, nil), auth.ErrTokenInvalid)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := signup(t, env, "Ada", "ada@example.com", "student")

	bio := "mathematician"
	location := "London"
	image := "/uploads/1-ada.png"
	updated, err := env.users.UpdateProfile(ctx, user.ID, ProfileInput{Bio: &bio, Location: &location}, &image)
	require.NoError(t, err)
	assert.Equal(t, "mathematician", updated.Bio)
	assert.Equal(t, "London", updated.Location)
	assert.Equal(t, image, updated.ProfileImage)
	assert.Equal(t, "ada@example.com", updated.Email)

	bad := "not-mail"
	_, err = env.users.UpdateProfile(ctx, user.ID, ProfileInput{Mail: &bad}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.users.UpdateProfile(ctx, "missing", ProfileInput{Bio: &bio}, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Equal(t, "User Ada updated their profile.", descriptions(t, env)[0])
}

func TestAdminUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ada := signup(t, env, "Ada", "ada@example.com", "student")
	bob := signup(t, env, "Bob", "bob@example.com", "student")
	root := signup(t, env, "Root", "root@example.com", domain.RoleAdmin)

	newPassword := "n3w-pass"
	name := "Ada L."
	updated, err := env.users.AdminUpdate(ctx, ada.ID, ada.ID, AdminUpdateInput{
		CurrentPassword: "pa55word",
		Password:        &newPassword,
		Name:            &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)

	_, err = env.users.Login(ctx, LoginInput{Email: "ada@example.com", Password: "n3w-pass"})
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		_, err := env.users.AdminUpdate(ctx, ada.ID, ada.ID, AdminUpdateInput{CurrentPassword: "pa55word", Name: &name})
		assert.ErrorIs(t, err, ErrIncorrectPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("other non-admin caller", func(t *testing.T) {
		role := domain.RoleAdmin
		_, err := env.users.AdminUpdate(ctx, bob.ID, ada.ID, AdminUpdateInput{CurrentPassword: "n3w-pass", Role: &role})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin caller", func(t *testing.T) {
		role := "instructor"
		out, err := env.users.AdminUpdate(ctx, root.ID, bob.ID, AdminUpdateInput{CurrentPassword: "pa55word", Role: &role})
		require.NoError(t, err)
		assert.Equal(t, "instructor", out.Role)
	})

	t.Run("email conflict", func(t *testing.T) {
		email := "root@example.com"
		_, err := env.users.AdminUpdate(ctx, bob.ID, bob.ID, AdminUpdateInput{CurrentPassword: "pa55word", Email: &email})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := env.users.AdminUpdate(ctx, root.ID, "missing", AdminUpdateInput{CurrentPassword: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("non-admin caller on missing target", func(t *testing.T) {
		_, err := env.users.AdminUpdate(ctx, bob.ID, "missing", AdminUpdateInput{CurrentPassword: "x"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("padded email is normalized", func(t *testing.T) {
		email := "  Ada.L@Example.COM "
		out, err := env.users.AdminUpdate(ctx, ada.ID, ada.ID, AdminUpdateInput{CurrentPassword: "n3w-pass", Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "ada.l@example.com", out.Email)

		_, err = env.users.Login(ctx, LoginInput{Email: "ADA.L@example.com", Password: "n3w-pass"})
		require.NoError(t, err)
	})

	t.Run("missing current password", func(t *testing.T) {
		_, err := env.users.AdminUpdate(ctx, ada.ID, ada.ID, AdminUpdateInput{Name: &name})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDeleteLeavesDanglingActivity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ada := signup(t, env, "Ada", "ada@example.com", "student")

	deleted, err := env.users.Delete(ctx, ada.ID, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, deleted.ID)

	recent, err := env.activities.Recent(ctx, DefaultRecentActivities)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, "User Ada was deleted.", recent[0].Description)
	assert.Equal(t, ada.ID, recent[0].UserID)

	_, err = env.users.Me(ctx, recent[0].UserID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ada := signup(t, env, "Ada", "ada@example.com", "student")
	bob := signup(t, env, "Bob", "bob@example.com", "student")
	root := signup(t, env, "Root", "root@example.com", domain.RoleAdmin)

	_, err := env.users.Delete(ctx, bob.ID, ada.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.users.Delete(ctx, root.ID, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.users.Delete(ctx, root.ID, ada.ID)
	require.NoError(t, err)
	_, err = env.users.Me(ctx, ada.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivityRecentLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for i := 0; i < 8; i++ {
		require.NoError(t, env.activities.Record(ctx, "u", "event"))
	}

	recent, err := env.activities.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentActivities)

	assert.Error(t, env.activities.Record(ctx, "u", ""))
}

func TestStatusService(t *testing.T) {
	status := NewStatusService("")
	assert.Equal(t, DefaultStatus, status.Get())

	assert.Equal(t, "Maintenance", status.Set(" Maintenance "))
	assert.Equal(t, "Maintenance", status.Set(""))
	assert.Equal(t, "Maintenance", status.Get())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status.Set("Online")
			_ = status.Get()
		}()
	}
	wg.Wait()
	assert.Equal(t, "Online", status.Get())
}
