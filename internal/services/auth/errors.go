package auth

import "errors"

// ErrRegistrationFailed masks duplicate-email sign-ups so the API never
// reveals whether an address is registered.
var ErrRegistrationFailed = errors.New("registration failed")

// ErrInvalidCredentials covers both unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrUnsupportedJWTAlg is returned when the configured signing algorithm is unknown.
var ErrUnsupportedJWTAlg = errors.New("unsupported JWT algorithm")

// ErrInvalidTokenMissingUserID is returned when a verified token lacks the user_id claim.
var ErrInvalidTokenMissingUserID = errors.New("invalid token: missing user_id claim")

// ErrInvalidTokenMissingEmail is returned when a verified token lacks the email claim.
var ErrInvalidTokenMissingEmail = errors.New("invalid token: missing email claim")
