package commands

import (
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration commands",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	users.AddCommand(newAdminUsersListCmd(app))
	users.AddCommand(newAdminUserStatusCmd(app, "suspend", client.StatusSuspended, "Suspend a user account"))
	users.AddCommand(newAdminUserStatusCmd(app, "activate", client.StatusActive, "Reactivate a suspended account"))
	users.AddCommand(newAdminUsersDeleteCmd(app))
	cmd.AddCommand(users)

	cmd.AddCommand(newAdminProjectsCmd(app))

	return cmd
}

func newAdminUsersListCmd(app *App) *cobra.Command {
	var role, status string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleAdmin); err != nil {
				return err
			}

			users, err := app.Client.ListUsers(cmd.Context(), client.UserFilters{
				Role:   client.Role(role),
				Status: status,
			})
			if err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Println("No users found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.FullName(), u.Email, u.Role, u.Status)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Filter by role (admin, client, freedev)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active, suspended)")

	return cmd
}

func newAdminUserStatusCmd(app *App, use, status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleAdmin); err != nil {
				return err
			}

			if err := app.Client.SetUserStatus(cmd.Context(), args[0], status); err != nil {
				return fmt.Errorf("failed to update user status: %w", err)
			}

			fmt.Printf("✓ User %s is now %s.\n", args[0], status)
			return nil
		},
	}
}

func newAdminUsersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a user account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleAdmin); err != nil {
				return err
			}

			if !yes {
				if err := confirm(fmt.Sprintf("Delete user %s", args[0])); err != nil {
					return err
				}
			}

			if err := app.Client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			fmt.Printf("✓ User %s deleted.\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newAdminProjectsCmd(app *App) *cobra.Command {
	projects := &cobra.Command{
		Use:   "projects",
		Short: "Moderate projects",
	}

	projects.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all projects across the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleAdmin); err != nil {
				return err
			}

			list, err := app.Client.ListProjects(cmd.Context(), client.ProjectFilters{})
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			printProjectTable(list)
			return nil
		},
	})

	projects.AddCommand(&cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Remove a project for moderation reasons",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleAdmin); err != nil {
				return err
			}

			if err := app.Client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}

			fmt.Printf("✓ Project %s removed.\n", args[0])
			return nil
		},
	})

	return projects
}

func confirm(label string) error {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return fmt.Errorf("confirmation required in non-interactive mode (use --yes)")
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("cancelled")
	}
	return nil
}
