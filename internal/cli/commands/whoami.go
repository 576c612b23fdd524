package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			if refresh {
				if err := app.Session.Refresh(cmd.Context()); err != nil {
					return fmt.Errorf("failed to refresh session: %w", err)
				}
			}

			snap := app.Session.Snapshot()
			user := snap.User
			fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
			fmt.Printf("  Role:   %s\n", user.Role)
			fmt.Printf("  Status: %s\n", user.Status)
			if user.Title != "" {
				fmt.Printf("  Title:  %s\n", user.Title)
			}
			if len(user.Skills) > 0 {
				fmt.Printf("  Skills: %s\n", strings.Join(user.Skills, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-fetch the current user from the API")

	return cmd
}
