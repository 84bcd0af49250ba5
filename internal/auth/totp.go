package auth

import (
	"fmt"

	"github.com/pquerna/otp/totp"
)

// totpIssuer appears in authenticator apps for enrolled accounts.
const totpIssuer = "Kutumb"

// GenerateTOTPSecret creates a new TOTP secret for enrolling a second factor.
// Returns the secret to store on the user and the otpauth:// provisioning URL.
func GenerateTOTPSecret(username string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: username,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate totp secret: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a second factor code against the stored secret.
func VerifyTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
