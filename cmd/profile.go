package cmd

import (
	"github.com/habedi/hrgo/hr"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/habedi/hrgo/pkg/dates"
	"github.com/spf13/cobra"
)

// profileCmd shows the signed-in employee's profile.
func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your employee profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			p, err := s.hr.Profile(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		},
	}
	cmd.AddCommand(profileUpdateCmd(a))
	return cmd
}

func profileUpdateCmd(a *app) *cobra.Command {
	var email, phone, address, birthDate string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your contact details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd hr.ProfileUpdate
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				upd.Phone = &phone
			}
			if cmd.Flags().Changed("address") {
				upd.Address = &address
			}
			if cmd.Flags().Changed("birth-date") {
				iso, err := dates.DisplayToISO(birthDate)
				if err != nil {
					return clierr.New(clierr.Validation, "Invalid birth date: "+err.Error(), err)
				}
				upd.BirthDate = &iso
			}
			if upd.Empty() {
				return clierr.New(clierr.Validation, "Nothing to update. Pass at least one of --email, --phone, --address, --birth-date.", nil)
			}

			s, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			p, err := s.hr.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return err
			}
			cmd.Println("Profile updated.")
			printProfile(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New e-mail address")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&address, "address", "", "New postal address")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "Birth date as DD/MM/YYYY")
	return cmd
}

func printProfile(cmd *cobra.Command, p *hr.Profile) {
	table := newTable(cmd.OutOrStdout(), "Field", "Value")
	table.AppendBulk([][]string{
		{"Name", p.FullName()},
		{"Employee No", p.EmployeeNumber},
		{"E-mail", p.Email},
		{"Phone", p.Phone},
		{"Address", singleLine(p.Address)},
		{"Department", p.Department},
		{"Position", p.Position},
		{"Hire Date", displayDate(p.HireDate)},
		{"Birth Date", displayDate(p.BirthDate)},
	})
	table.Render()
}

func displayDate(iso string) string {
	s, err := dates.ISOToDisplay(iso)
	if err != nil {
		return iso
	}
	return s
}
