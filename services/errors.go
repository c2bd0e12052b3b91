package services

import "errors"

// Link errors.
var (
	ErrLinkNotFound        = errors.New("link not found")
	ErrAllocationExhausted = errors.New("could not allocate a free slug")
)

// Passkey ceremony errors.
var (
	ErrDuplicateCredential   = errors.New("authenticator already registered")
	ErrMissingUsername       = errors.New("username is required")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrAuthenticatorNotFound = errors.New("authenticator not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrChallengeNotFound     = errors.New("challenge not found or expired")
	ErrClonedAuthenticator   = errors.New("authenticator counter did not increase")
	ErrUnknownIntent         = errors.New("unknown intent")
	ErrCeremonyFailed        = errors.New("passkey verification failed")
)

// ErrSpam is returned when the honeypot check fails.
var ErrSpam = errors.New("honeypot check failed")

// CeremonyError carries the reason the WebAuthn library rejected a ceremony.
type CeremonyError struct {
	Reason string
	Err    error
}

func (e *CeremonyError) Error() string {
	if e.Reason == "" {
		return ErrCeremonyFailed.Error()
	}
	return ErrCeremonyFailed.Error() + ": " + e.Reason
}

func (e *CeremonyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCeremonyFailed}
	}
	return []error{ErrCeremonyFailed, e.Err}
}
