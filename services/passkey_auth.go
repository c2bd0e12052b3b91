package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"shrnq/config"
	"shrnq/domain"
	"shrnq/dtos/response"
	"shrnq/repository"
	"shrnq/util"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/hashicorp/go-uuid"
	"go.uber.org/zap"
)

const (
	IntentRegistration   = "registration"
	IntentAuthentication = "authentication"
)

// RelyingParty identifies the host a passkey is scoped to.
type RelyingParty struct {
	ID     string `json:"id"`
	Origin string `json:"origin"`
}

type ChallengeInput struct {
	RelyingParty RelyingParty
	Username     string
	// CurrentUser is nil for anonymous visitors.
	CurrentUser *domain.User
}

type VerifyInput struct {
	Intent   string
	Username string
	// UserID is the id a new account is created with.
	UserID        string
	Authenticator *domain.Authenticator
}

type FinishInput struct {
	CeremonyID string
	Intent     string
	Username   string
	Response   []byte
}

type IPasskeyService interface {
	GenerateChallenge(ctx context.Context, in ChallengeInput) (*response.LoginOptions, string, error)
	Verify(ctx context.Context, in VerifyInput) (*domain.User, error)
	FinishCeremony(ctx context.Context, in FinishInput) (*domain.User, error)
}

type PasskeyService struct {
	store       repository.ICredentialStore
	redis       IRedisService
	displayName string
	logger      *zap.Logger
}

func NewPasskeyService(store repository.ICredentialStore, redis IRedisService, displayName string, logger *zap.Logger) IPasskeyService {
	return &PasskeyService{store: store, redis: redis, displayName: displayName, logger: logger}
}

func (ps *PasskeyService) relyingParty(rp RelyingParty) (*webauthn.WebAuthn, error) {
	return config.NewWebAuthn(ps.displayName, rp.ID, rp.Origin)
}

// GenerateChallenge issues a discoverable login challenge and, when the
// requested username is free, a registration challenge for a new account.
func (ps *PasskeyService) GenerateChallenge(ctx context.Context, in ChallengeInput) (*response.LoginOptions, string, error) {
	wa, err := ps.relyingParty(in.RelyingParty)
	if err != nil {
		return nil, "", fmt.Errorf("configure relying party: %w", err)
	}

	ceremonyID, err := uuid.GenerateUUID()
	if err != nil {
		return nil, "", err
	}
	ceremony := &Ceremony{ID: ceremonyID, RelyingParty: in.RelyingParty}
	options := &response.LoginOptions{
		RelyingParty:   response.RelyingParty{Name: ps.displayName, ID: in.RelyingParty.ID},
		Authenticators: []response.AuthenticatorDescriptor{},
	}

	var existing []domain.Authenticator
	if in.CurrentUser != nil {
		existing, err = ps.store.ListUserAuthenticators(ctx, in.CurrentUser.ID)
		if err != nil {
			return nil, "", fmt.Errorf("list authenticators: %w", err)
		}
		for _, a := range existing {
			options.Authenticators = append(options.Authenticators, response.AuthenticatorDescriptor{
				ID:         a.CredentialID,
				Transports: a.TransportList(),
			})
		}
	}

	if in.Username != "" {
		owner, err := ps.store.FindUserByUsername(ctx, in.Username)
		if err != nil {
			return nil, "", fmt.Errorf("lookup username: %w", err)
		}
		available := owner == nil
		options.UsernameAvailable = &available

		if available {
			pendingID, err := util.GenerateUserID()
			if err != nil {
				return nil, "", fmt.Errorf("generate user id: %w", err)
			}
			pending := &domain.User{ID: pendingID, Username: in.Username, Authenticators: existing}

			regOptions := []webauthn.RegistrationOption{
				webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
			}
			if creds := pending.WebAuthnCredentials(); len(creds) > 0 {
				regOptions = append(regOptions, webauthn.WithExclusions(webauthn.Credentials(creds).CredentialDescriptors()))
			}
			creation, session, err := wa.BeginRegistration(pending, regOptions...)
			if err != nil {
				return nil, "", fmt.Errorf("begin registration: %w", err)
			}

			options.User = &response.PendingUser{ID: pendingID, Username: in.Username}
			options.Registration = creation
			ceremony.Username = in.Username
			ceremony.PendingUserID = pendingID
			ceremony.Registration = session
		}
	}

	assertion, session, err := wa.BeginDiscoverableLogin()
	if err != nil {
		return nil, "", fmt.Errorf("begin login: %w", err)
	}
	options.Authentication = assertion
	ceremony.Authentication = session

	if err := ps.redis.StoreCeremony(ctx, ceremony); err != nil {
		return nil, "", fmt.Errorf("store ceremony: %w", err)
	}
	return options, ceremonyID, nil
}

// Verify resolves the account behind an already verified ceremony. For a
// registration it creates the user and its first authenticator.
func (ps *PasskeyService) Verify(ctx context.Context, in VerifyInput) (*domain.User, error) {
	if in.Authenticator == nil {
		return nil, ErrAuthenticatorNotFound
	}
	switch in.Intent {
	case IntentRegistration:
		return ps.register(ctx, in)
	case IntentAuthentication:
		return ps.authenticate(ctx, in.Authenticator.CredentialID)
	default:
		return nil, ErrUnknownIntent
	}
}

func (ps *PasskeyService) register(ctx context.Context, in VerifyInput) (*domain.User, error) {
	if err := ps.checkRegistration(ctx, in.Username, in.Authenticator.CredentialID); err != nil {
		return nil, err
	}

	userID := in.UserID
	if userID == "" {
		var err error
		if userID, err = util.GenerateUserID(); err != nil {
			return nil, fmt.Errorf("generate user id: %w", err)
		}
	}

	var created *domain.User
	err := ps.store.Transaction(ctx, func(tx repository.ICredentialStore) error {
		user, err := tx.CreateUser(ctx, &domain.User{ID: userID, Username: in.Username})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrUsernameTaken
			}
			return err
		}
		authenticator := *in.Authenticator
		authenticator.UserID = user.ID
		if _, err := tx.CreateAuthenticator(ctx, &authenticator); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateCredential
			}
			return err
		}
		user.Authenticators = []domain.Authenticator{authenticator}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.logger.Info("user registered", zap.String("user_id", created.ID))
	return created, nil
}

// checkRegistration rejects a known credential, a missing username or a
// username that already has an account, in that order.
func (ps *PasskeyService) checkRegistration(ctx context.Context, username, credentialID string) error {
	existing, err := ps.store.FindAuthenticatorByID(ctx, credentialID)
	if err != nil {
		return fmt.Errorf("lookup authenticator: %w", err)
	}
	if existing != nil {
		return ErrDuplicateCredential
	}
	if username == "" {
		return ErrMissingUsername
	}
	owner, err := ps.store.FindUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup username: %w", err)
	}
	if owner != nil {
		return ErrUserAlreadyExists
	}
	return nil
}

func (ps *PasskeyService) authenticate(ctx context.Context, credentialID string) (*domain.User, error) {
	authenticator, err := ps.store.FindAuthenticatorByID(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("lookup authenticator: %w", err)
	}
	if authenticator == nil {
		return nil, ErrAuthenticatorNotFound
	}
	user, err := ps.store.FindUserByID(ctx, authenticator.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		ps.logger.Warn("authenticator without user", zap.String("user_id", authenticator.UserID))
		return nil, ErrUserNotFound
	}
	return user, nil
}

// FinishCeremony checks the browser's response against the stored challenge
// and hands the outcome to Verify.
func (ps *PasskeyService) FinishCeremony(ctx context.Context, in FinishInput) (*domain.User, error) {
	switch in.Intent {
	case IntentRegistration:
		return ps.finishRegistration(ctx, in)
	case IntentAuthentication:
		return ps.finishAuthentication(ctx, in)
	default:
		return nil, ErrUnknownIntent
	}
}

func (ps *PasskeyService) finishRegistration(ctx context.Context, in FinishInput) (*domain.User, error) {
	parsed, err := protocol.ParseCredentialCreationResponseBytes(in.Response)
	if err != nil {
		return nil, ceremonyError(err)
	}
	ceremony, err := ps.redis.TakeCeremony(ctx, in.CeremonyID)
	if err != nil {
		return nil, err
	}

	if err := ps.checkRegistration(ctx, in.Username, domain.EncodeID(parsed.RawID)); err != nil {
		return nil, err
	}
	if ceremony.Registration == nil {
		return nil, ErrChallengeNotFound
	}
	if in.Username != ceremony.Username {
		return nil, &CeremonyError{Reason: "username does not match the challenge"}
	}

	wa, err := ps.relyingParty(ceremony.RelyingParty)
	if err != nil {
		return nil, fmt.Errorf("configure relying party: %w", err)
	}
	pending := &domain.User{ID: ceremony.PendingUserID, Username: ceremony.Username}
	credential, err := wa.CreateCredential(pending, *ceremony.Registration, parsed)
	if err != nil {
		return nil, ceremonyError(err)
	}

	return ps.Verify(ctx, VerifyInput{
		Intent:        IntentRegistration,
		Username:      in.Username,
		UserID:        pending.ID,
		Authenticator: domain.NewAuthenticator(pending.ID, credential),
	})
}

func (ps *PasskeyService) finishAuthentication(ctx context.Context, in FinishInput) (*domain.User, error) {
	parsed, err := protocol.ParseCredentialRequestResponseBytes(in.Response)
	if err != nil {
		return nil, ceremonyError(err)
	}
	ceremony, err := ps.redis.TakeCeremony(ctx, in.CeremonyID)
	if err != nil {
		return nil, err
	}
	if ceremony.Authentication == nil {
		return nil, ErrChallengeNotFound
	}

	credentialID := domain.EncodeID(parsed.RawID)
	user, err := ps.Verify(ctx, VerifyInput{
		Intent:        IntentAuthentication,
		Authenticator: &domain.Authenticator{CredentialID: credentialID},
	})
	if err != nil {
		return nil, err
	}
	user.Authenticators, err = ps.store.ListUserAuthenticators(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list authenticators: %w", err)
	}

	wa, err := ps.relyingParty(ceremony.RelyingParty)
	if err != nil {
		return nil, fmt.Errorf("configure relying party: %w", err)
	}
	handler := func(_, userHandle []byte) (webauthn.User, error) {
		if !bytes.Equal(userHandle, user.WebAuthnID()) {
			return nil, ErrUserNotFound
		}
		return user, nil
	}
	_, credential, err := wa.ValidatePasskeyLogin(handler, *ceremony.Authentication, parsed)
	if err != nil {
		return nil, ceremonyError(err)
	}

	if credential.Authenticator.CloneWarning {
		ps.logger.Warn("authenticator counter did not increase",
			zap.String("user_id", user.ID),
			zap.Uint32("counter", credential.Authenticator.SignCount))
		return nil, ErrClonedAuthenticator
	}
	if err := ps.store.UpdateAuthenticatorCounter(ctx, credentialID, credential.Authenticator.SignCount); err != nil {
		return nil, fmt.Errorf("update counter: %w", err)
	}
	return user, nil
}

func ceremonyError(err error) error {
	var protocolErr *protocol.Error
	if errors.As(err, &protocolErr) && protocolErr.Details != "" {
		return &CeremonyError{Reason: protocolErr.Details, Err: err}
	}
	return &CeremonyError{Reason: err.Error(), Err: err}
}
