package services

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"shrnq/dtos/response"

	"github.com/golang-jwt/jwt/v5"
)

const (
	HoneypotNameField      = "name__confirm"
	HoneypotValidFromField = "from__confirm"
)

type IHoneypotService interface {
	InputProps() (*response.HoneypotFields, error)
	Check(form url.Values) error
}

// HoneypotService renders a hidden field bots tend to fill and a signed
// timestamp the form must be submitted after.
type HoneypotService struct {
	secret []byte
	now    func() time.Time
}

func NewHoneypotService(secret string) *HoneypotService {
	return &HoneypotService{secret: []byte(secret), now: time.Now}
}

func (h *HoneypotService) InputProps() (*response.HoneypotFields, error) {
	claims := jwt.RegisteredClaims{NotBefore: jwt.NewNumericDate(h.now())}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return nil, fmt.Errorf("sign honeypot timestamp: %w", err)
	}
	return &response.HoneypotFields{
		NameFieldName:      HoneypotNameField,
		ValidFromFieldName: HoneypotValidFromField,
		EncryptedValidFrom: token,
	}, nil
}

// Check returns an error wrapping ErrSpam when the submission looks automated.
func (h *HoneypotService) Check(form url.Values) error {
	if _, ok := form[HoneypotNameField]; !ok {
		return fmt.Errorf("%w: missing honeypot input", ErrSpam)
	}
	if form.Get(HoneypotNameField) != "" {
		return fmt.Errorf("%w: honeypot input not empty", ErrSpam)
	}

	validFrom := form.Get(HoneypotValidFromField)
	if validFrom == "" {
		return fmt.Errorf("%w: missing honeypot valid from input", ErrSpam)
	}
	_, err := jwt.ParseWithClaims(validFrom, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return h.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(h.now))
	if errors.Is(err, jwt.ErrTokenNotValidYet) {
		return fmt.Errorf("%w: honeypot valid from is in future", ErrSpam)
	}
	if err != nil {
		return fmt.Errorf("%w: invalid honeypot valid from input", ErrSpam)
	}
	return nil
}
