package response

import "github.com/go-webauthn/webauthn/protocol"

type RelyingParty struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type PendingUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AuthenticatorDescriptor struct {
	ID         string   `json:"id"`
	Transports []string `json:"transports"`
}

// LoginOptions is what the login page needs to start either ceremony.
type LoginOptions struct {
	RelyingParty RelyingParty `json:"rp"`
	// Token the login form posts back.
	CSRF string `json:"csrf"`
	// nil when no username was asked about.
	UsernameAvailable *bool                         `json:"usernameAvailable"`
	User              *PendingUser                  `json:"user"`
	Authenticators    []AuthenticatorDescriptor     `json:"authenticators"`
	Registration      *protocol.CredentialCreation  `json:"registration,omitempty"`
	Authentication    *protocol.CredentialAssertion `json:"authentication"`
}

type LoginError struct {
	Error LoginErrorMessage `json:"error"`
}

type LoginErrorMessage struct {
	Message string `json:"message"`
}
