package config

import (
	"crypto/sha256"
	"encoding/base64"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"golang.org/x/crypto/hkdf"
)

const SessionCookieName = "__session"

// NewSessionStore keeps the session id in a cookie and the data in storage.
func NewSessionStore(sec Security, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		Expiration:     time.Duration(sec.SessionValidityInSeconds) * time.Second,
		KeyLookup:      "cookie:" + SessionCookieName,
		CookiePath:     "/",
		CookieSecure:   sec.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
}

// CookieEncryptionKey derives the base64 AES-256 key encryptcookie expects
// from the session secret.
func CookieEncryptionKey(secret string) (string, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("shrnq cookie encryption"))
	if _, err := io.ReadFull(r, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
