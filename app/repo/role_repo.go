package repo

import (
	"errors"

	"cellar/app/models"

	"gorm.io/gorm"
)

type RoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) *RoleRepository { return &RoleRepository{db: db} }

func (r *RoleRepository) FindByName(name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// Ensure creates the role if it does not exist yet; existing permission
// sets are left untouched.
func (r *RoleRepository) Ensure(name string, permissions string) error {
	var count int64
	if err := r.db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.Create(&models.Role{Name: name, Permissions: permissions}).Error
}
