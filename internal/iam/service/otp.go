package service

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/gatekeeper/internal/iam/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTPService wraps the TOTP capability: enrollment secret generation and
// code verification. The secret itself is persisted on the user record in
// clear, since the raw value is needed to verify every future code.
type OTPService struct {
	Store  store.Store
	Issuer string // issuer name shown in authenticator apps
}

// Enroll generates a TOTP secret for the user, enables OTP on their
// record, and returns the secret plus its otpauth:// URI for the client to
// render (QR or otherwise).
func (s *OTPService) Enroll(ctx context.Context, userID, email string) (secret, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().EnableOTP(ctx, userID, key.Secret()); err != nil {
		return "", "", fmt.Errorf("failed to store OTP secret: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// VerifyCode checks a time-based code against a stored secret.
func (s *OTPService) VerifyCode(code, secret string) bool {
	return totp.Validate(code, secret)
}
