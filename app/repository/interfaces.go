package repository

import (
	"github.com/FinWiseHQ/FinWise/app/models"
)

// UserRepository handles database access for local user accounts.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByIdentityID(identityID string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	TouchLastLogin(id uint) error
}
