package repository

import (
	"context"
	"errors"
	"strings"

	"shrnq/domain"
	"shrnq/repository/command_repository"
	"shrnq/repository/query_repository"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// ICredentialStore is everything the passkey ceremonies need from persistence.
// Find* methods return (nil, nil) when nothing matches.
type ICredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	FindAuthenticatorByID(ctx context.Context, credentialID string) (*domain.Authenticator, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	CreateAuthenticator(ctx context.Context, authenticator *domain.Authenticator) (*domain.Authenticator, error)
	ListUserAuthenticators(ctx context.Context, userID string) ([]domain.Authenticator, error)
	UpdateAuthenticatorCounter(ctx context.Context, credentialID string, counter uint32) error
	// Transaction runs fn against a store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx ICredentialStore) error) error
}

type PasskeyStore struct {
	db      *gorm.DB
	query   query_repository.IUserQueryRepository
	command command_repository.IUserCommandRepository
}

func NewPasskeyStore(db *gorm.DB, query query_repository.IUserQueryRepository, command command_repository.IUserCommandRepository) ICredentialStore {
	return &PasskeyStore{db: db, query: query, command: command}
}

func (s *PasskeyStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.query.GetUserByUsername(s.db.WithContext(ctx), username)
	return user, notFoundAsNil(err)
}

func (s *PasskeyStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.query.GetByID(s.db.WithContext(ctx), id)
	return user, notFoundAsNil(err)
}

func (s *PasskeyStore) FindAuthenticatorByID(ctx context.Context, credentialID string) (*domain.Authenticator, error) {
	authenticator, err := s.query.GetAuthenticatorByCredentialID(s.db.WithContext(ctx), credentialID)
	return authenticator, notFoundAsNil(err)
}

func (s *PasskeyStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	created, err := s.command.CreateUser(s.db.WithContext(ctx), user)
	if err != nil {
		return nil, translateWriteError(err)
	}
	return created, nil
}

func (s *PasskeyStore) CreateAuthenticator(ctx context.Context, authenticator *domain.Authenticator) (*domain.Authenticator, error) {
	created, err := s.command.CreateAuthenticator(s.db.WithContext(ctx), authenticator)
	if err != nil {
		return nil, translateWriteError(err)
	}
	return created, nil
}

func (s *PasskeyStore) ListUserAuthenticators(ctx context.Context, userID string) ([]domain.Authenticator, error) {
	return s.query.GetAuthenticatorsByUserID(s.db.WithContext(ctx), userID)
}

func (s *PasskeyStore) UpdateAuthenticatorCounter(ctx context.Context, credentialID string, counter uint32) error {
	return s.command.UpdateAuthenticatorCounter(s.db.WithContext(ctx), credentialID, counter)
}

func (s *PasskeyStore) Transaction(ctx context.Context, fn func(tx ICredentialStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PasskeyStore{db: tx, query: s.query, command: s.command})
	})
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func translateWriteError(err error) error {
	if IsUniqueViolation(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// IsUniqueViolation recognises unique-constraint failures from every supported
// driver, with or without GORM's error translation.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Violation of UNIQUE KEY")
}
