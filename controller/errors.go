package controller

import (
	"errors"
	"net"
	"strings"

	"shrnq/config"
	"shrnq/services"

	"github.com/gofiber/fiber/v2"
)

const genericErrorMessage = "Something went wrong"

// errorStatus maps a domain error to the HTTP status it is reported with.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrLinkNotFound),
		errors.Is(err, services.ErrAuthenticatorNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateCredential),
		errors.Is(err, services.ErrUserAlreadyExists),
		errors.Is(err, services.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrMissingUsername),
		errors.Is(err, services.ErrUnknownIntent),
		errors.Is(err, services.ErrChallengeNotFound),
		errors.Is(err, services.ErrCeremonyFailed),
		errors.Is(err, services.ErrSpam):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrClonedAuthenticator):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrAllocationExhausted):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// userMessages is the text shown for errors the user can act on.
var userMessages = []struct {
	err     error
	message string
}{
	{services.ErrLinkNotFound, "Not found"},
	{services.ErrAuthenticatorNotFound, "Authenticator not found"},
	{services.ErrUserNotFound, "User not found"},
	{services.ErrDuplicateCredential, "Authenticator has already been registered."},
	{services.ErrUserAlreadyExists, "User already exists."},
	{services.ErrUsernameTaken, "Username is already taken."},
	{services.ErrMissingUsername, "Username is required."},
	{services.ErrUnknownIntent, "Unknown intent"},
	{services.ErrChallengeNotFound, "Challenge expired. Reload the page and try again."},
	{services.ErrClonedAuthenticator, "Authenticator counter did not increase"},
	{services.ErrSpam, "Form not submitted properly"},
}

// errorMessage is the text shown to the user. Infrastructure failures never
// leak their details.
func errorMessage(err error) string {
	if status := errorStatus(err); status >= fiber.StatusInternalServerError {
		return genericErrorMessage
	}
	var ceremonyErr *services.CeremonyError
	if errors.As(err, &ceremonyErr) {
		if ceremonyErr.Reason == "" {
			return "Passkey verification failed"
		}
		return "Passkey verification failed: " + ceremonyErr.Reason
	}
	for _, known := range userMessages {
		if errors.Is(err, known.err) {
			return known.message
		}
	}
	return genericErrorMessage
}

// baseURL is the configured public URL or, failing that, the one the
// request came in on.
func baseURL(c *fiber.Ctx, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	return c.BaseURL()
}

// relyingParty scopes passkeys to the request host unless pinned by config.
func relyingParty(c *fiber.Ctx, conf config.WebAuthn) services.RelyingParty {
	rp := services.RelyingParty{ID: conf.RpID, Origin: conf.RpOrigin}
	if rp.ID == "" {
		host := c.Hostname()
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		rp.ID = host
	}
	if rp.Origin == "" {
		rp.Origin = c.BaseURL()
	}
	return rp
}
