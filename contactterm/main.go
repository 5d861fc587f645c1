package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rhystmorgan/contactterm/internal/config"
)

// env is built by PersistentPreRunE and shared by every command.
var env *client

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contactterm",
	Short: "Terminal client for a remote contacts service",
	Long: `contactterm keeps a local view of the contacts stored on a remote
service. Run it without a subcommand for the interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		env, err = newClient(cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if env == nil {
			return nil
		}
		return env.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInterface(cmd.Context(), env)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "contacts service base URL (default "+config.DefaultAPIBaseURL+")")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.String("data-dir", "", "directory for the session, log and audit files (default ~/.contactterm)")
	flags.Bool("debug", false, "log at debug level")
	flags.Bool("audit", true, "record accepted changes to the audit trail")
	flags.Bool("ephemeral", false, "keep the session token in memory only")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}
