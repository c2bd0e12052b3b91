package query_repository

import (
	"shrnq/domain"

	"gorm.io/gorm"
)

type IUserQueryRepository interface {
	GetByID(db *gorm.DB, id string) (*domain.User, error)
	GetUserByUsername(db *gorm.DB, username string) (*domain.User, error)
	GetAuthenticatorByCredentialID(db *gorm.DB, credentialID string) (*domain.Authenticator, error)
	GetAuthenticatorsByUserID(db *gorm.DB, userID string) ([]domain.Authenticator, error)
}

type UserQueryRepository struct{}

func NewUserQueryRepository() IUserQueryRepository {
	return &UserQueryRepository{}
}

func (u *UserQueryRepository) GetByID(db *gorm.DB, id string) (*domain.User, error) {
	var user domain.User
	err := db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserQueryRepository) GetUserByUsername(db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserQueryRepository) GetAuthenticatorByCredentialID(db *gorm.DB, credentialID string) (*domain.Authenticator, error) {
	var authenticator domain.Authenticator
	err := db.Where("credential_id = ?", credentialID).First(&authenticator).Error
	if err != nil {
		return nil, err
	}
	return &authenticator, nil
}

func (u *UserQueryRepository) GetAuthenticatorsByUserID(db *gorm.DB, userID string) ([]domain.Authenticator, error) {
	authenticators := []domain.Authenticator{}
	err := db.Where("user_id = ?", userID).Order("id").Find(&authenticators).Error
	if err != nil {
		return nil, err
	}
	return authenticators, nil
}
