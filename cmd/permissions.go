package cmd

import (
	"strconv"

	"github.com/habedi/hrgo/hr"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/habedi/hrgo/pkg/permission"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// permissionsCmd shows module grants. Fetched grants are cached locally so
// --cached works offline.
func permissionsCmd(a *app) *cobra.Command {
	var cached bool
	var module, kind string

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Show which HR modules you may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k permission.Kind
			if module != "" {
				var err error
				if k, err = permission.ParseKind(kind); err != nil {
					return clierr.New(clierr.Validation, err.Error(), err)
				}
			}

			set, err := loadPermissions(cmd, a, cached)
			if err != nil {
				return err
			}

			if module != "" {
				if set.HasByName(module, k) {
					cmd.Printf("%s: %s allowed\n", module, k)
				} else {
					cmd.Printf("%s: %s denied\n", module, k)
				}
				return nil
			}

			if set.Len() == 0 {
				cmd.Println("No module permissions found.")
				return nil
			}
			printPermissions(cmd, set)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Use the permissions saved by the last fetch instead of asking the server")
	cmd.Flags().StringVarP(&module, "module", "m", "", "Only check this module (by name)")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(permission.View), "Permission to check with --module [view, create, edit, delete]")
	return cmd
}

func loadPermissions(cmd *cobra.Command, a *app, cached bool) (permission.Set, error) {
	ctx := cmd.Context()
	if cached {
		s, err := a.session()
		if err != nil {
			return permission.Set{}, err
		}
		set, err := hr.CachedPermissions(ctx, s.perms)
		if err != nil {
			return permission.Set{}, clierr.New(clierr.Internal, "Failed to read cached permissions.", err)
		}
		return set, nil
	}

	s, err := a.authed(ctx)
	if err != nil {
		return permission.Set{}, err
	}
	set, err := s.hr.Permissions(ctx)
	if err != nil {
		return permission.Set{}, err
	}
	if err := hr.SavePermissions(ctx, s.perms, set); err != nil {
		log.Warn().Err(err).Msg("Could not cache permissions")
	}
	return set, nil
}

func printPermissions(cmd *cobra.Command, set permission.Set) {
	table := newTable(cmd.OutOrStdout(), "ID", "Module", "View", "Create", "Edit", "Delete")
	for _, g := range set.Grants() {
		table.Append([]string{
			strconv.Itoa(g.ModuleID),
			g.ModuleName,
			yesNo(g.CanView),
			yesNo(g.CanCreate),
			yesNo(g.CanEdit),
			yesNo(g.CanDelete),
		})
	}
	table.Render()
}
