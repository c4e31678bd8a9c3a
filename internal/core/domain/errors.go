package domain

import "errors"

var (
	ErrInvalidID = errors.New("invalid id")
	ErrForbidden = errors.New("operation not allowed for this user")
	ErrInternal  = errors.New("internal server error")

	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailAlreadyTaken = errors.New("email already taken")

	ErrAuthentication       = errors.New("invalid username or password")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrRegistrationNotFound   = errors.New("registration not found")
	ErrRegistrationInProgress = errors.New("registration already in progress")
	ErrRegistrationConfirmed  = errors.New("registration already confirmed")

	ErrPostNotFound = errors.New("post not found")

	ErrEmptyAddress     = errors.New("email address is empty")
	ErrMalformedAddress = errors.New("email address is malformed")
	ErrEmptySubject     = errors.New("email subject is empty")
	ErrEmptyBody        = errors.New("email body is empty")
	ErrEmailBuild       = errors.New("failed to build email")
	ErrEmailTransport   = errors.New("failed to deliver email")
)
