package services

import "cellar/app/models"

// Seed permission sets for the built-in roles.
const (
	AdminPermissions = "admin.access,users.manage"
	UserPermissions  = ""
)

type RoleStore interface {
	FindByName(name string) (*models.Role, error)
	Ensure(name string, permissions string) error
}

type RoleService struct{ roles RoleStore }

func NewRoleService(roles RoleStore) *RoleService { return &RoleService{roles: roles} }

// SeedDefaults creates the admin and user roles if missing.
func (s *RoleService) SeedDefaults() error {
	if err := s.roles.Ensure("admin", AdminPermissions); err != nil {
		return err
	}
	return s.roles.Ensure("user", UserPermissions)
}

// HasPermission reports whether the named role grants perm. An unknown role
// grants nothing.
func (s *RoleService) HasPermission(roleName, perm string) bool {
	role, err := s.roles.FindByName(roleName)
	if err != nil {
		return false
	}
	return role.HasPermission(perm)
}
