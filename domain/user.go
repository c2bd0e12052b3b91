package domain

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

type User struct {
	ID             string          `gorm:"primaryKey;size:10" json:"id"`
	Username       string          `gorm:"size:100;not null;uniqueIndex" json:"username"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	Authenticators []Authenticator `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (User) TableName() string {
	return "user"
}

func (u User) WebAuthnID() []byte {
	return []byte(u.ID)
}
func (u User) WebAuthnName() string {
	return u.Username
}
func (u User) WebAuthnDisplayName() string {
	return u.Username
}
func (u User) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.Authenticators))
	for _, a := range u.Authenticators {
		cred, err := a.Credential()
		if err != nil {
			continue
		}
		creds = append(creds, cred)
	}
	return creds
}
