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

// NewApplyCmd creates the apply command
func NewApplyCmd(app *App) *cobra.Command {
	var message string
	var rate float64

	cmd := &cobra.Command{
		Use:   "apply PROJECT_ID",
		Short: "Apply to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleFreedev); err != nil {
				return err
			}

			project, err := app.Client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if message == "" {
				msg, err := promptMessage(project.Title)
				if err != nil {
					return err
				}
				message = msg
			}

			application, err := app.Client.CreateApplication(cmd.Context(), client.ApplicationInput{
				ProjectID:    project.ID,
				Message:      message,
				ProposedRate: rate,
			})
			if err != nil {
				return fmt.Errorf("failed to submit application: %w", err)
			}

			fmt.Printf("✓ Application sent for %q (id %s)\n", project.Title, application.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Cover message for the client (will prompt if not provided)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Proposed daily rate in euros")

	return cmd
}

// NewApplicationsCmd creates the applications command group
func NewApplicationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "Manage project applications",
	}

	cmd.AddCommand(newApplicationsListCmd(app))
	cmd.AddCommand(newApplicationsUpdateCmd(app))
	cmd.AddCommand(newApplicationsWithdrawCmd(app))

	return cmd
}

func newApplicationsListCmd(app *App) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List applications (yours as a freelancer, or per project as a client)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			var apps []client.Application
			var err error

			switch app.Session.Snapshot().Role() {
			case client.RoleFreedev:
				apps, err = app.Client.MyApplications(cmd.Context())
			case client.RoleClient, client.RoleAdmin:
				if projectID == "" {
					return fmt.Errorf("--project is required for the %s role", app.Session.Snapshot().Role())
				}
				apps, err = app.Client.ProjectApplications(cmd.Context(), projectID)
			default:
				return fmt.Errorf("unknown role %q", app.Session.Snapshot().Role())
			}
			if err != nil {
				return err
			}

			if len(apps) == 0 {
				fmt.Println("No applications found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROJECT\tRATE\tSTATUS\tSENT")
			for _, a := range apps {
				title := a.ProjectID
				if a.Project != nil {
					title = a.Project.Title
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
					a.ID, title, a.ProposedRate, a.Status, a.CreatedAt.Format("2006-01-02"))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (client role)")

	return cmd
}

func newApplicationsUpdateCmd(app *App) *cobra.Command {
	var message string
	var rate float64

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Revise a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleFreedev); err != nil {
				return err
			}

			update := client.ApplicationUpdate{}
			changed := false
			if cmd.Flags().Changed("message") {
				update.Message = &message
				changed = true
			}
			if cmd.Flags().Changed("rate") {
				update.ProposedRate = &rate
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to update; pass --message or --rate")
			}

			updated, err := app.Client.UpdateApplication(cmd.Context(), args[0], update)
			if err != nil {
				return fmt.Errorf("failed to update application: %w", err)
			}

			fmt.Printf("✓ Application %s updated.\n", updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "New cover message")
	cmd.Flags().Float64Var(&rate, "rate", 0, "New proposed daily rate in euros")

	return cmd
}

func newApplicationsWithdrawCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw ID",
		Short: "Withdraw one of your applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleFreedev); err != nil {
				return err
			}

			if err := app.Client.DeleteApplication(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to withdraw application: %w", err)
			}

			fmt.Printf("✓ Application %s withdrawn.\n", args[0])
			return nil
		},
	}
}

func promptMessage(projectTitle string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("a message is required in non-interactive mode (use --message)")
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Message to the client of %q", projectTitle),
		Validate: func(input string) error {
			if len(input) < 10 {
				return fmt.Errorf("message must be at least 10 characters")
			}
			return nil
		},
	}

	message, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("message input cancelled: %w", err)
	}
	return message, nil
}
