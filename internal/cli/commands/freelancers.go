package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewFreelancersCmd creates the freelancers command group, the public
// directory of available freelancers.
func NewFreelancersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "freelancers",
		Aliases: []string{"freelances"},
		Short:   "Browse the freelancer directory",
	}

	cmd.AddCommand(newFreelancersListCmd(app))
	cmd.AddCommand(newFreelancersShowCmd(app))

	return cmd
}

func newFreelancersListCmd(app *App) *cobra.Command {
	var skill string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List available freelancers",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Client.ListUsers(cmd.Context(), client.UserFilters{
				Role:   client.RoleFreedev,
				Status: client.StatusActive,
			})
			if err != nil {
				return err
			}

			if skill != "" {
				users = filterBySkill(users, skill)
			}

			if len(users) == 0 {
				fmt.Println("No freelancers found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTITLE\tRATE\tSKILLS")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
					u.ID, u.FullName(), u.Title, u.DailyRate, strings.Join(u.Skills, ","))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&skill, "skill", "", "Filter by skill")

	return cmd
}

func newFreelancersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a freelancer's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Client.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", user.FullName())
			if user.Title != "" {
				fmt.Printf("  Title:      %s\n", user.Title)
			}
			if user.DailyRate > 0 {
				fmt.Printf("  Daily rate: %.2f €\n", user.DailyRate)
			}
			if len(user.Skills) > 0 {
				fmt.Printf("  Skills:     %s\n", strings.Join(user.Skills, ", "))
			}
			fmt.Printf("  Member since: %s\n", user.CreatedAt.Format("January 2006"))
			if user.Bio != "" {
				fmt.Printf("\n%s\n", user.Bio)
			}
			return nil
		},
	}
}

func filterBySkill(users []client.User, skill string) []client.User {
	var out []client.User
	for _, u := range users {
		for _, s := range u.Skills {
			if strings.EqualFold(s, skill) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
