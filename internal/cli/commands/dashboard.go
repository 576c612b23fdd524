package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewDashboardCmd creates the dashboard command. It is the CLI version of the
// web app's /dashboard redirect: the signed-in role decides which view loads.
func NewDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard for your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			switch app.Session.Snapshot().Role() {
			case client.RoleAdmin:
				return runAdminDashboard(cmd.Context(), app)
			case client.RoleClient:
				return runClientDashboard(cmd.Context(), app)
			case client.RoleFreedev:
				return runFreelanceDashboard(cmd.Context(), app)
			default:
				return fmt.Errorf("unknown role %q", app.Session.Snapshot().Role())
			}
		},
	}
}

func runFreelanceDashboard(ctx context.Context, app *App) error {
	dash, err := app.Client.GetFreelanceDashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	fmt.Println("Freelance dashboard")
	fmt.Printf("\n  Active projects:    %d\n", dash.Stats.ActiveProjects)
	fmt.Printf("  Completed projects: %d\n", dash.Stats.CompletedProjects)
	fmt.Printf("  Total earned:       %.2f €\n", dash.Stats.TotalEarned)

	if len(dash.Applications) > 0 {
		fmt.Println("\nYour applications:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROJECT\tRATE\tSTATUS\tSENT")
		for _, a := range dash.Applications {
			title := a.ProjectID
			if a.Project != nil {
				title = a.Project.Title
			}
			fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", title, a.ProposedRate, a.Status, a.CreatedAt.Format("2006-01-02"))
		}
		w.Flush()
	}

	if len(dash.Projects) > 0 {
		fmt.Println("\nOpen projects for you:")
		printProjectTable(dash.Projects)
	}

	return nil
}

func runClientDashboard(ctx context.Context, app *App) error {
	dash, err := app.Client.GetClientDashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	fmt.Println("Client dashboard")
	fmt.Printf("\n  Active projects:    %d\n", dash.Stats.ActiveProjects)
	fmt.Printf("  Completed projects: %d\n", dash.Stats.CompletedProjects)

	if len(dash.Projects) > 0 {
		fmt.Println("\nYour projects:")
		printProjectTable(dash.Projects)
	}

	if len(dash.Proposals) > 0 {
		fmt.Println("\nReceived proposals:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROJECT\tRATE\tSTATUS")
		for _, p := range dash.Proposals {
			title := p.ProjectID
			if p.Project != nil {
				title = p.Project.Title
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", p.ID, title, p.ProposedRate, p.Status)
		}
		w.Flush()
	}

	return nil
}

func runAdminDashboard(ctx context.Context, app *App) error {
	users, err := app.Client.ListUsers(ctx, client.UserFilters{})
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	projects, err := app.Client.ListProjects(ctx, client.ProjectFilters{})
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	suspended := 0
	freelancers := 0
	clients := 0
	for _, u := range users {
		if u.Status == client.StatusSuspended {
			suspended++
		}
		switch u.Role {
		case client.RoleFreedev:
			freelancers++
		case client.RoleClient:
			clients++
		}
	}

	fmt.Println("Admin dashboard")
	fmt.Printf("\n  Users:       %d (%d clients, %d freelancers, %d suspended)\n",
		len(users), clients, freelancers, suspended)
	fmt.Printf("  Projects:    %d\n", len(projects))
	fmt.Println("\nRun 'freedev admin users ls' to manage accounts.")

	return nil
}
