package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/session"
	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
)

// SessionService covers cookie-based browser sign-in. Unlike token sign-in
// it never issues JWTs; the OTP step-up applies on both paths.
type SessionService struct {
	Store    store.Store
	Sessions *session.Store
	OTP      OTPVerifier
}

// SignIn verifies the credentials and mints a server-side session.
func (s *SessionService) SignIn(ctx context.Context, email, password, otpCode string) (session.Session, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return session.Session{}, ErrUserNotFound
		}
		return session.Session{}, err
	}

	// Same order as token sign-in: an enrolled user is never
	// authenticated on password alone, cookie path included.
	if user.OTPEnabled {
		if otpCode == "" || !s.OTP.VerifyCode(otpCode, user.OTPSecret) {
			return session.Session{}, ErrInvalidOTPCode
		}
	}

	if err := cryptox.VerifySecret(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrHashMismatch) {
			return session.Session{}, ErrInvalidCredentials
		}
		return session.Session{}, err
	}

	return s.Sessions.Create(ctx, domain.PrincipalFromUser(user))
}

// SignOut drops the session. Unknown ids are not an error.
func (s *SessionService) SignOut(ctx context.Context, id string) error {
	return s.Sessions.Delete(ctx, id)
}

// Resolve turns a presented session id back into a principal.
func (s *SessionService) Resolve(ctx context.Context, id string) (domain.Principal, error) {
	sess, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return domain.Principal{}, err
	}
	return sess.Principal, nil
}
