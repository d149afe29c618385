package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/registry"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	mini := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	signer, err := jwtx.NewSigner([]byte("0123456789abcdef0123456789abcdef"), "gatekeeper-test", "gatekeeper-api")
	require.NoError(t, err)

	return &AuthService{
		Store:      s,
		Registry:   registry.NewRedis(rdb, time.Hour),
		Signer:     signer,
		OTP:        &OTPService{Store: s, Issuer: "gatekeeper-test"},
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func TestSignUp(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "hunter22", user.PasswordHash)

	_, err = svc.SignUp(ctx, "a@b.com", "different")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "nobody@b.com", "hunter22", "")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "a@b.com", "wrong", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success issues verifiable pair", func(t *testing.T) {
		pair, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, time.Minute, pair.ExpiresIn)

		access, err := svc.Signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.False(t, access.IsRefresh())
		require.Equal(t, "a@b.com", access.Email)
		require.Equal(t, "regular", access.Role)

		refresh, err := svc.Signer.Verify(pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, refresh.IsRefresh())
		require.Equal(t, access.Subject, refresh.Subject)
	})
}

func TestSignInWithOTP(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	otpSvc := svc.OTP.(*OTPService)
	secret, uri, err := otpSvc.Enroll(ctx, user.ID, user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, secret)
	require.Contains(t, uri, "otpauth://totp/")

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

		_, err = svc.SignIn(ctx, "a@b.com", "hunter22", code)
		require.NoError(t, err)
	})
}

func TestRefreshRotation(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	first, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	// Rotating the first pair succeeds and yields a distinct pair.
	second, err := svc.RefreshTokens(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-away token is dead; replaying it is flagged as reuse.
	_, err = svc.RefreshTokens(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrReusedRefresh)

	// The replay does not punish the legitimate holder: the current
	// rotation still redeems.
	third, err := svc.RefreshTokens(ctx, second.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, second.RefreshToken, third.RefreshToken)
}

func TestRefreshHappyChain(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	pair, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	// Each rotation's output redeems exactly once.
	for range 3 {
		next, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		require.NoError(t, err)
		pair = next
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	pair, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("access token on refresh path", func(t *testing.T) {
		_, err := svc.RefreshTokens(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other, err := jwtx.NewSigner([]byte("ffffffffffffffffffffffffffffffff"), "gatekeeper-test", "gatekeeper-api")
		require.NoError(t, err)

		forged, err := other.Sign(jwtx.NewRefreshClaims("user-1", "tid", time.Hour, "gatekeeper-test", "gatekeeper-api", time.Now()))
		require.NoError(t, err)

		_, err = svc.RefreshTokens(ctx, forged)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestSignOutInvalidatesRefresh(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	pair, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, user.ID))

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrReusedRefresh)
}

func TestSignInSupersedesEarlierSession(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@b.com", "hunter22")
	require.NoError(t, err)

	first, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	// A second sign-in overwrites the single refresh slot.
	second, err := svc.SignIn(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	_, err = svc.RefreshTokens(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrReusedRefresh)

	// The newest sign-in's token is unaffected by the stale replay.
	_, err = svc.RefreshTokens(ctx, second.RefreshToken)
	require.NoError(t, err)
}
