package auth

import "errors"

var (
	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrUserNameExists is returned when attempting to create a user with a username that already exists.
	ErrUserNameExists = errors.New("user with username already exists")

	// ErrTOTPRequired is returned when the account has a second factor enrolled but no code was supplied.
	ErrTOTPRequired = errors.New("totp code required")

	// ErrTOTPInvalid is returned when the supplied second factor code does not verify.
	ErrTOTPInvalid = errors.New("invalid totp code")

	// ErrInvalidToken is returned when a bearer token fails signature or claim validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
	ErrLDAPDisabled = errors.New("ldap authentication is disabled")

	// ErrMultipleUsersFound is returned when a directory query expected one user but found multiple.
	// This typically indicates a misconfigured LDAP filter or duplicate entries.
	ErrMultipleUsersFound = errors.New("multiple users found")
)
