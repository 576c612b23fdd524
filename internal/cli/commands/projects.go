package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewProjectsCmd creates the projects command group
func NewProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Browse and manage projects",
	}

	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsUpdateCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))

	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var search, skill string
	var mine bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := client.ProjectFilters{Search: search, Skill: skill}

			if mine {
				if err := app.requireRole(client.RoleClient); err != nil {
					return err
				}
				filters.ClientID = app.Session.Snapshot().User.ID
			}

			projects, err := app.Client.ListProjects(cmd.Context(), filters)
			if err != nil {
				return err
			}

			if len(projects) == 0 {
				fmt.Println("No projects found.")
				return nil
			}

			printProjectTable(projects)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by text in title or description")
	cmd.Flags().StringVar(&skill, "skill", "", "Filter by required skill")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only your own projects (client role)")

	return cmd
}

func newProjectsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one project in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := app.Client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n\n", project.Title)
			fmt.Printf("  ID:      %s\n", project.ID)
			fmt.Printf("  Status:  %s\n", project.Status)
			fmt.Printf("  Budget:  %.2f €\n", project.Budget)
			if len(project.Skills) > 0 {
				fmt.Printf("  Skills:  %s\n", strings.Join(project.Skills, ", "))
			}
			fmt.Printf("  Posted:  %s\n", project.CreatedAt.Format("2006-01-02"))
			fmt.Printf("\n%s\n", project.Description)
			return nil
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var title, description, skills string
	var budget float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleClient); err != nil {
				return err
			}

			if title == "" || description == "" {
				return fmt.Errorf("--title and --description are required")
			}

			project, err := app.Client.CreateProject(cmd.Context(), client.ProjectInput{
				Title:       title,
				Description: description,
				Budget:      budget,
				Skills:      splitSkills(skills),
			})
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			fmt.Printf("✓ Project created: %s (%s)\n", project.Title, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Project title")
	cmd.Flags().StringVar(&description, "description", "", "Project description")
	cmd.Flags().Float64Var(&budget, "budget", 0, "Budget in euros")
	cmd.Flags().StringVar(&skills, "skills", "", "Comma-separated required skills")

	return cmd
}

func newProjectsUpdateCmd(app *App) *cobra.Command {
	var title, description, skills string
	var budget float64

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update one of your projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleClient); err != nil {
				return err
			}

			// Fetch first so unset flags keep their current values
			current, err := app.Client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			input := client.ProjectInput{
				Title:       current.Title,
				Description: current.Description,
				Budget:      current.Budget,
				Skills:      current.Skills,
			}
			if cmd.Flags().Changed("title") {
				input.Title = title
			}
			if cmd.Flags().Changed("description") {
				input.Description = description
			}
			if cmd.Flags().Changed("budget") {
				input.Budget = budget
			}
			if cmd.Flags().Changed("skills") {
				input.Skills = splitSkills(skills)
			}

			project, err := app.Client.UpdateProject(cmd.Context(), args[0], input)
			if err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}

			fmt.Printf("✓ Project updated: %s\n", project.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().Float64Var(&budget, "budget", 0, "New budget in euros")
	cmd.Flags().StringVar(&skills, "skills", "", "New comma-separated skills")

	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete one of your projects",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireRole(client.RoleClient); err != nil {
				return err
			}

			if err := app.Client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}

			fmt.Printf("✓ Project %s deleted.\n", args[0])
			return nil
		},
	}
}

func printProjectTable(projects []client.Project) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tBUDGET\tSTATUS\tSKILLS")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			p.ID, p.Title, p.Budget, p.Status, strings.Join(p.Skills, ","))
	}
	w.Flush()
}

func splitSkills(skills string) []string {
	if skills == "" {
		return nil
	}
	parts := strings.Split(skills, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
