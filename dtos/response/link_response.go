package response

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type ShortenResponse struct {
	Status Status `json:"status"`
	URL    string `json:"url"`
}

type ErrorResponse struct {
	Status Status            `json:"status"`
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// IndexResponse carries what the home page needs to render its form.
type IndexResponse struct {
	CSRF     string         `json:"csrf"`
	Honeypot HoneypotFields `json:"honeypot"`
	Theme    string         `json:"theme"`
	User     *UserResponse  `json:"user"`
	BaseURL  string         `json:"baseUrl"`
}

type HoneypotFields struct {
	NameFieldName      string `json:"nameFieldName"`
	ValidFromFieldName string `json:"validFromFieldName"`
	EncryptedValidFrom string `json:"encryptedValidFrom"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
