package domain

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

const (
	DeviceTypeSingle = "singleDevice"
	DeviceTypeMulti  = "multiDevice"

	transportSeparator = ","
)

// Authenticator is a registered WebAuthn credential. Binary fields are kept
// as unpadded base64url text.
type Authenticator struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	CredentialID         string    `gorm:"size:1024;not null;uniqueIndex:credential_idx" json:"credential_id"`
	UserID               string    `gorm:"size:10;not null;index" json:"user_id"`
	CredentialPublicKey  string    `gorm:"not null" json:"credential_public_key"`
	Counter              uint32    `gorm:"not null" json:"counter"`
	CredentialDeviceType string    `gorm:"size:32;not null" json:"credential_device_type"`
	CredentialBackedUp   bool      `gorm:"not null" json:"credential_backed_up"`
	Transports           string    `gorm:"not null" json:"transports"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Authenticator) TableName() string {
	return "authenticator"
}

func EncodeID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeID(id string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(id, "="))
}

func JoinTransports(transports []string) string {
	return strings.Join(transports, transportSeparator)
}

func (a Authenticator) TransportList() []string {
	if a.Transports == "" {
		return []string{}
	}
	return strings.Split(a.Transports, transportSeparator)
}

// NewAuthenticator builds the row for a credential verified by go-webauthn.
func NewAuthenticator(userID string, cred *webauthn.Credential) *Authenticator {
	transports := make([]string, 0, len(cred.Transport))
	for _, t := range cred.Transport {
		transports = append(transports, string(t))
	}
	deviceType := DeviceTypeSingle
	if cred.Flags.BackupEligible {
		deviceType = DeviceTypeMulti
	}
	return &Authenticator{
		CredentialID:         EncodeID(cred.ID),
		UserID:               userID,
		CredentialPublicKey:  EncodeID(cred.PublicKey),
		Counter:              cred.Authenticator.SignCount,
		CredentialDeviceType: deviceType,
		CredentialBackedUp:   cred.Flags.BackupState,
		Transports:           JoinTransports(transports),
	}
}

// Credential converts the row back into the shape go-webauthn verifies against.
func (a Authenticator) Credential() (webauthn.Credential, error) {
	id, err := DecodeID(a.CredentialID)
	if err != nil {
		return webauthn.Credential{}, err
	}
	publicKey, err := DecodeID(a.CredentialPublicKey)
	if err != nil {
		return webauthn.Credential{}, err
	}
	var transports []protocol.AuthenticatorTransport
	for _, t := range a.TransportList() {
		transports = append(transports, protocol.AuthenticatorTransport(t))
	}
	return webauthn.Credential{
		ID:        id,
		PublicKey: publicKey,
		Transport: transports,
		Flags: webauthn.CredentialFlags{
			UserPresent:    true,
			BackupEligible: a.CredentialDeviceType == DeviceTypeMulti,
			BackupState:    a.CredentialBackedUp,
		},
		Authenticator: webauthn.Authenticator{
			SignCount: a.Counter,
		},
	}, nil
}
