package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/session"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store/drivers/sqlite"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T) (*SessionService, *AuthService) {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	mini := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	auth := &AuthService{Store: s}

	return &SessionService{
		Store:    s,
		Sessions: session.NewStore(rdb, time.Hour),
		OTP:      &OTPService{Store: s, Issuer: "gatekeeper-test"},
	}, auth
}

func TestSessionSignIn(t *testing.T) {
	svc, auth := newTestSessionService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "nobody@b.com", "hunter22", "")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "a@b.com", "wrong", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success resolves principal", func(t *testing.T) {
		sess, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)

		p, err := svc.Resolve(ctx, sess.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, p.Sub)
		require.Equal(t, "a@b.com", p.Email)
	})

	t.Run("sign-out drops the session", func(t *testing.T) {
		sess, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
		require.NoError(t, err)

		require.NoError(t, svc.SignOut(ctx, sess.ID))

		_, err = svc.Resolve(ctx, sess.ID)
		require.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestSessionSignInWithOTP(t *testing.T) {
	svc, auth := newTestSessionService(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	otpSvc := svc.OTP.(*OTPService)
	secret, _, err := otpSvc.Enroll(ctx, user.ID, user.Email)
	require.NoError(t, err)

	// An enrolled user is never authenticated on password alone, on the
	// cookie path just like the token path.
	t.Run("missing code", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
		require.ErrorIs(t, err, ErrInvalidOTPCode)
	})

	t.Run("wrong code", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "a@b.com", "hunter22", "000000")
		require.ErrorIs(t, err, ErrInvalidOTPCode)
	})

	t.Run("valid code", func(t *testing.T) {
		code, err := totp.GenerateCode(secret, time.Now())
		require.NoError(t, err)

		sess, err := svc.SignIn(ctx, "a@b.com", "hunter22", code)
		require.NoError(t, err)
		require.NotEmpty(t, sess.ID)
	})
}
