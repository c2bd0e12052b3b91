package config

import "github.com/go-webauthn/webauthn/webauthn"

// NewWebAuthn builds a relying party for one host. The rp id and origin come
// from the request unless they are pinned in configuration.
func NewWebAuthn(displayName, rpID, origin string) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: displayName,
		RPID:          rpID,
		RPOrigins:     []string{origin},
	})
}
