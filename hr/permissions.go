package hr

import (
	"context"
	"fmt"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/db"
	"github.com/habedi/hrgo/pkg/permission"
)

// Permissions fetches the employee's module grants.
func (s *Service) Permissions(ctx context.Context) (permission.Set, error) {
	data, err := client.Get[[]permission.Grant](ctx, s.client, "/permissions", nil)
	grants, err := list(data, err)
	if err != nil {
		return permission.Set{}, err
	}
	return permission.NewSet(grants), nil
}

// SavePermissions replaces the cached grants with set.
func SavePermissions(ctx context.Context, repo db.PermissionRepository, set permission.Set) error {
	grants := set.Grants()
	rows := make([]db.Permission, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, db.Permission{
			ModuleID:   g.ModuleID,
			ModuleName: g.ModuleName,
			CanView:    g.CanView,
			CanCreate:  g.CanCreate,
			CanEdit:    g.CanEdit,
			CanDelete:  g.CanDelete,
		})
	}
	if err := repo.Replace(ctx, rows); err != nil {
		return fmt.Errorf("failed to cache permissions: %w", err)
	}
	return nil
}

// CachedPermissions loads the grants saved by SavePermissions.
func CachedPermissions(ctx context.Context, repo db.PermissionRepository) (permission.Set, error) {
	rows, err := repo.List(ctx)
	if err != nil {
		return permission.Set{}, fmt.Errorf("failed to read cached permissions: %w", err)
	}
	grants := make([]permission.Grant, 0, len(rows))
	for _, r := range rows {
		grants = append(grants, permission.Grant{
			ModuleID:   r.ModuleID,
			ModuleName: r.ModuleName,
			CanView:    r.CanView,
			CanCreate:  r.CanCreate,
			CanEdit:    r.CanEdit,
			CanDelete:  r.CanDelete,
		})
	}
	return permission.NewSet(grants), nil
}
