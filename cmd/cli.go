package cmd

import (
	"context"
	"os"

	"github.com/habedi/hrgo/config"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the hrgo command line and exits with a status derived from the error type.
func Execute() {
	a := newApp()
	rootCmd := createRootCmd(a)

	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	err := rootCmd.ExecuteContext(context.Background())
	a.close()
	if err != nil {
		cliErr := toCLIError(err)
		log.Error().Err(err).Str("type", string(cliErr.Type)).Msg("Command execution failed.")
		printError(rootCmd, cliErr)
		os.Exit(cliErr.ExitCode())
	}
}

func createRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hrgo",
		Short:         "A command-line client for the HR self-service API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "Path to a YAML config file (default ~/.hrgo/config.yaml)")
	flags.String("base-url", "", "Base URL of the HR API, e.g. https://hr.example.com/api")
	flags.Duration("timeout", 0, "Per-request timeout, e.g. 30s")
	flags.String("db", "", "Path of the local credential database")

	bindFlag(a, config.KeyBaseURL, rootCmd, "base-url")
	bindFlag(a, config.KeyTimeout, rootCmd, "timeout")
	bindFlag(a, config.KeyDBPath, rootCmd, "db")

	rootCmd.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		statusCmd(a),
		profileCmd(a),
		leaveCmd(a),
		attendanceCmd(a),
		permissionsCmd(a),
		overviewCmd(a),
		versionCmd(),
	)
	rootCmd.AddCommand(requestCmds(a)...)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

func bindFlag(a *app, key string, cmd *cobra.Command, name string) {
	if err := a.v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		log.Error().Err(err).Str("flag", name).Msg("Failed to bind flag")
	}
}

// printError writes the user-facing message and, when present, its hint.
func printError(cmd *cobra.Command, err *clierr.Error) {
	cmd.PrintErrln("Error:", err.Message)
	if err.Hint != "" {
		cmd.PrintErrln(err.Hint)
	}
}
