package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/registry"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmailTaken         = errors.New("email_already_registered")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidOTPCode     = errors.New("invalid_otp_code")

	// ErrInvalidRefresh covers every ordinary refresh failure: bad
	// signature, expiry, unknown subject, collaborator errors. All of
	// them collapse into this one error so the response never tells a
	// probing client which check failed.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrReusedRefresh means a structurally valid refresh token was
	// presented after it had already been rotated away. Distinguished
	// internally so the caller can escalate; surfaced to clients exactly
	// like ErrInvalidRefresh.
	ErrReusedRefresh = errors.New("invalidated_refresh_token")
)

// OTPVerifier is the code-verification capability consumed during sign-in
// step-up. Satisfied by *OTPService.
type OTPVerifier interface {
	VerifyCode(code, secret string) bool
}

// AuthService owns the token lifecycle: sign-up, sign-in (with optional
// OTP step-up), token pair issuance and refresh rotation.
type AuthService struct {
	Store      store.Store
	Registry   registry.Registry
	Signer     *jwtx.Signer
	OTP        OTPVerifier
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SignUp registers a new user with a hashed password and the regular role.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (domain.User, error) {
	hash, err := cryptox.HashSecret(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleRegular,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// SignIn authenticates email+password (and the OTP code when the user has
// enrolled) and issues a fresh token pair.
func (s *AuthService) SignIn(ctx context.Context, email, password, otpCode string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUserNotFound
		}
		return domain.TokenPair{}, err
	}

	// OTP step-up runs before the password check, matching the order the
	// enrolment flow promises: an enrolled user is never authenticated
	// on password alone.
	if user.OTPEnabled {
		if otpCode == "" || !s.OTP.VerifyCode(otpCode, user.OTPSecret) {
			l.Info("sign-in rejected: invalid 2fa code", slog.String("user_id", user.ID))
			return domain.TokenPair{}, ErrInvalidOTPCode
		}
	}

	if err := cryptox.VerifySecret(password, user.PasswordHash); err != nil {
		l.Info("sign-in rejected: password mismatch", slog.String("user_id", user.ID))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	return s.GenerateTokens(ctx, user)
}

// GenerateTokens signs a fresh access/refresh pair for the user and
// records the new rotation id in the registry. The registry insert happens
// only after both signings succeed, so we never hand out a refresh token
// without its server-side record, and never record an id whose token was
// never issued.
func (s *AuthService) GenerateTokens(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	tokenID := uuid.NewString()
	now := time.Now().UTC()

	var accessToken, refreshToken string

	// The two signings share no mutable state, so they can run in
	// parallel.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accessToken, err = s.Signer.Sign(jwtx.NewAccessClaims(
			user.ID, user.Email, string(user.Role),
			s.AccessTTL, s.issuer(), s.audience(), now,
		))
		return err
	})
	g.Go(func() error {
		var err error
		refreshToken, err = s.Signer.Sign(jwtx.NewRefreshClaims(
			user.ID, tokenID,
			s.RefreshTTL, s.issuer(), s.audience(), now,
		))
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Registry.Insert(ctx, user.ID, tokenID); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// RefreshTokens rotates a refresh token: verify, check it is the current
// rotation id, invalidate it, then issue a new pair. The invalidate runs
// before reissue so a concurrent request presenting the same token sees an
// already-empty slot and fails, which is exactly the reuse-detection
// behaviour we want.
//
// Failures are fail-closed: everything unexpected collapses into
// ErrInvalidRefresh.
func (s *AuthService) RefreshTokens(ctx context.Context, presented string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Signer.Verify(presented)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if !claims.IsRefresh() {
		// An access token presented on the refresh endpoint.
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	valid, err := s.Registry.Validate(ctx, claims.Subject, claims.TID)
	if err != nil {
		l.Error("refresh registry unavailable", slog.Any("error", err))
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	if !valid {
		// Either the slot expired, or this token was already rotated
		// away and is being replayed. Flagged for escalation, but the
		// current rotation stays live: the legitimate holder keeps
		// refreshing with the token the last rotation issued.
		l.Warn("refresh token reuse detected",
			slog.String("user_id", claims.Subject),
		)
		return domain.TokenPair{}, ErrReusedRefresh
	}

	if err := s.Registry.Invalidate(ctx, claims.Subject); err != nil {
		l.Error("refresh registry unavailable", slog.Any("error", err))
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	pair, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefresh
	}
	return pair, nil
}

// SignOut drops the subject's refresh-token slot. Outstanding access
// tokens stay valid until they expire; only the refresh path is revocable.
func (s *AuthService) SignOut(ctx context.Context, subjectID string) error {
	return s.Registry.Invalidate(ctx, subjectID)
}

func (s *AuthService) issuer() string   { return s.Signer.Issuer() }
func (s *AuthService) audience() string { return s.Signer.Audience() }
