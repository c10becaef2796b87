package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/habedi/hrgo/pkg/dates"
	"github.com/habedi/hrgo/pkg/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd signs in with a username and password and stores the token pair.
func loginCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the HR API",
		Long:  "Sign in with your username and password. The password is always read from the terminal or standard input.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(a.in)
			if username == "" {
				username, err = promptForInput(cmd, reader, "Username: ")
				if err != nil {
					return err
				}
			}
			password, err := promptForPassword(cmd, a.in, reader, "Password: ")
			if err != nil {
				return err
			}

			if err := validateCredentials(username, password); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if err := s.auth.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			cmd.Println("Login was successful.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to sign in with (prompted when omitted)")

	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			if err := s.auth.Logout(cmd.Context()); err != nil {
				return clierr.New(clierr.Internal, "Failed to clear the stored credentials.", err)
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			st, err := s.auth.Status(cmd.Context())
			if err != nil {
				return clierr.New(clierr.Internal, "Failed to read the stored credentials.", err)
			}
			if !st.LoggedIn {
				cmd.Println("Not logged in. Run 'hrgo login' to sign in.")
				return nil
			}
			cmd.Println("Logged in to", s.client.BaseURL())
			if st.AccessExpiry != nil {
				cmd.Printf("Access token expires: %s %s\n", dates.FormatDisplay(*st.AccessExpiry), st.AccessExpiry.Format("15:04"))
			}
			if st.RefreshExpiry != nil {
				cmd.Printf("Refresh token expires: %s %s\n", dates.FormatDisplay(*st.RefreshExpiry), st.RefreshExpiry.Format("15:04"))
			}
			if st.NeedsRefresh {
				cmd.Println("The access token will be refreshed on the next request.")
			}
			return nil
		},
	}
}

// promptForInput prompts the user for input and returns the trimmed string.
func promptForInput(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", clierr.New(clierr.Validation, "Failed to read input.", err)
	}
	return strings.TrimSpace(input), nil
}

// promptForPassword reads a password without echo when in is a terminal, and
// as a plain line otherwise (for piped input).
func promptForPassword(cmd *cobra.Command, in io.Reader, reader *bufio.Reader, prompt string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.Print(prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", clierr.New(clierr.Validation, "Failed to read password.", err)
		}
		return strings.TrimSpace(string(password)), nil
	}
	return promptForInput(cmd, reader, prompt)
}

// validateCredentials checks that the username and password are not empty.
func validateCredentials(username, password string) error {
	if err := validation.ValidateNonEmptyString("username", username); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	if err := validation.ValidateNonEmptyString("password", password); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}
