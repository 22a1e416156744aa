package services

import (
	"testing"

	"cellar/app/repo"
)

func TestRolePermissions(t *testing.T) {
	t.Parallel()

	roles := repo.NewMemoryRoleRepository()
	svc := NewRoleService(roles)
	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults error: %v", err)
	}

	if !svc.HasPermission("admin", "admin.access") {
		t.Fatalf("admin role missing admin.access")
	}
	if svc.HasPermission("user", "admin.access") {
		t.Fatalf("user role granted admin.access")
	}
	if svc.HasPermission("ghost", "admin.access") {
		t.Fatalf("unknown role granted admin.access")
	}
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	t.Parallel()

	roles := repo.NewMemoryRoleRepository()
	svc := NewRoleService(roles)
	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("second seed: %v", err)
	}
}
