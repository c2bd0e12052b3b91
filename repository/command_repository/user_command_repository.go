package command_repository

import (
	"shrnq/domain"

	"gorm.io/gorm"
)

type IUserCommandRepository interface {
	CreateUser(db *gorm.DB, entity *domain.User) (*domain.User, error)
	CreateAuthenticator(db *gorm.DB, entity *domain.Authenticator) (*domain.Authenticator, error)
	UpdateAuthenticatorCounter(db *gorm.DB, credentialID string, counter uint32) error
}
type UserCommandRepository struct {
}

func NewUserCommandRepository() IUserCommandRepository {
	return &UserCommandRepository{}
}

func (u *UserCommandRepository) CreateUser(db *gorm.DB, entity *domain.User) (*domain.User, error) {
	return entity, db.Omit("Authenticators").Create(entity).Error
}

func (u *UserCommandRepository) CreateAuthenticator(db *gorm.DB, entity *domain.Authenticator) (*domain.Authenticator, error) {
	return entity, db.Create(entity).Error
}

func (u *UserCommandRepository) UpdateAuthenticatorCounter(db *gorm.DB, credentialID string, counter uint32) error {
	return db.Model(&domain.Authenticator{}).
		Where("credential_id = ?", credentialID).
		Update("counter", counter).Error
}
