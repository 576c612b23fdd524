package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freedevconnect/freedev/internal/cli/client"
	"github.com/freedevconnect/freedev/internal/cli/commands"
	"github.com/freedevconnect/freedev/internal/cli/config"
	"github.com/freedevconnect/freedev/internal/cli/session"
	"github.com/freedevconnect/freedev/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree. The session store, HTTP client and
// their wiring are all constructed here and handed to the commands
// explicitly; nothing reaches for shared globals.
func NewRootCmd() *cobra.Command {
	var verbose bool
	app := &commands.App{}

	rootCmd := &cobra.Command{
		Use:   "freedev",
		Short: "FreeDev Connect - The freelance marketplace, from your terminal",
		Long: `FreeDev Connect CLI - Browse projects, send proposals and manage your
marketplace account without leaving the terminal.

Clients post projects and review proposals; freelancers browse and apply;
admins moderate the platform. Sign in once and your session is restored on
every run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The version command needs no session or network
			if cmd.Name() == "version" {
				return nil
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger.Init(level, "console")
			log := logger.GetLogger()

			cfg := config.Load()

			storage, err := session.NewDefaultStorage()
			if err != nil {
				return fmt.Errorf("failed to set up session storage: %w", err)
			}

			apiClient := client.New(cfg.APIBaseURL, storage, log)
			store := session.New(storage, apiClient, log)

			// The transport layer only signals; deciding what the user sees
			// next is this layer's job.
			apiClient.OnUnauthorized(func() {
				store.Invalidate()
				fmt.Fprintln(os.Stderr, "Session expired. Run 'freedev login' to sign in again.")
			})

			store.Initialize(cmd.Context())

			app.Session = store
			app.Client = apiClient
			app.Log = log
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging of API requests")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("freedev version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewRegisterCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewDashboardCmd(app))
	rootCmd.AddCommand(commands.NewProjectsCmd(app))
	rootCmd.AddCommand(commands.NewApplyCmd(app))
	rootCmd.AddCommand(commands.NewApplicationsCmd(app))
	rootCmd.AddCommand(commands.NewProfileCmd(app))
	rootCmd.AddCommand(commands.NewFreelancersCmd(app))
	rootCmd.AddCommand(commands.NewMessagesCmd(app))
	rootCmd.AddCommand(commands.NewAdminCmd(app))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
