package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(newProfileShowCmd(app))
	cmd.AddCommand(newProfileEditCmd(app))

	return cmd
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your full profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			user, err := app.Client.Profile(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
			fmt.Printf("  Role:       %s\n", user.Role)
			fmt.Printf("  Status:     %s\n", user.Status)
			if user.Title != "" {
				fmt.Printf("  Title:      %s\n", user.Title)
			}
			if user.DailyRate > 0 {
				fmt.Printf("  Daily rate: %.2f €\n", user.DailyRate)
			}
			if len(user.Skills) > 0 {
				fmt.Printf("  Skills:     %s\n", strings.Join(user.Skills, ", "))
			}
			if user.Bio != "" {
				fmt.Printf("\n%s\n", user.Bio)
			}
			return nil
		},
	}
}

func newProfileEditCmd(app *App) *cobra.Command {
	var firstName, lastName, title, bio, skills string
	var dailyRate float64

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			update := client.ProfileUpdate{}
			changed := false
			if cmd.Flags().Changed("first-name") {
				update.FirstName = &firstName
				changed = true
			}
			if cmd.Flags().Changed("last-name") {
				update.LastName = &lastName
				changed = true
			}
			if cmd.Flags().Changed("title") {
				update.Title = &title
				changed = true
			}
			if cmd.Flags().Changed("bio") {
				update.Bio = &bio
				changed = true
			}
			if cmd.Flags().Changed("skills") {
				parsed := splitSkills(skills)
				update.Skills = &parsed
				changed = true
			}
			if cmd.Flags().Changed("rate") {
				update.DailyRate = &dailyRate
				changed = true
			}

			if !changed {
				return fmt.Errorf("nothing to update; pass at least one flag")
			}

			user, err := app.Client.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			// Keep the session's cached user in line with the API
			if err := app.Session.Refresh(cmd.Context()); err != nil {
				app.Log.Debug().Err(err).Msg("Failed to refresh session after profile update")
			}

			fmt.Printf("✓ Profile updated for %s.\n", user.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&title, "title", "", "Professional title")
	cmd.Flags().StringVar(&bio, "bio", "", "Short biography")
	cmd.Flags().StringVar(&skills, "skills", "", "Comma-separated skills")
	cmd.Flags().Float64Var(&dailyRate, "rate", 0, "Daily rate in euros")

	return cmd
}
