package cmd

import (
	"github.com/habedi/hrgo/hr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// overviewCmd loads profile, leave balance and permissions in parallel.
func overviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show your profile, leave balance and permissions at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			ov, err := s.hr.Overview(cmd.Context())
			if err != nil {
				return err
			}
			if err := hr.SavePermissions(cmd.Context(), s.perms, ov.Permissions); err != nil {
				log.Warn().Err(err).Msg("Could not cache permissions")
			}

			cmd.Printf("Welcome, %s.\n\n", ov.Profile.FullName())
			printProfile(cmd, ov.Profile)
			cmd.Println()
			printBalance(cmd, ov.Balance)
			if ov.Permissions.Len() > 0 {
				cmd.Println()
				printPermissions(cmd, ov.Permissions)
			}
			return nil
		},
	}
}
