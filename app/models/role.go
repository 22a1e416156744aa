package models

import "strings"

type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:32;not null"`
	Permissions string `gorm:"size:255"` // comma-separated permission names
}

func (r *Role) PermissionList() []string {
	if r.Permissions == "" {
		return nil
	}
	return strings.Split(r.Permissions, ",")
}

func (r *Role) HasPermission(name string) bool {
	for _, p := range r.PermissionList() {
		if p == name {
			return true
		}
	}
	return false
}
