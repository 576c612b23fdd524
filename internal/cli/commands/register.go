package commands

import (
	"context"
	"fmt"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(app *App) *cobra.Command {
	var firstName, lastName, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a FreeDev Connect account",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := client.Registration{
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				Password:  password,
				Role:      client.Role(role),
			}
			return runRegister(cmd.Context(), app, reg)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&role, "role", "", "Account role: client or freedev (will prompt if not provided)")

	return cmd
}

func runRegister(ctx context.Context, app *App, reg client.Registration) error {
	if reg.Role == "" {
		role, err := promptRole()
		if err != nil {
			return err
		}
		reg.Role = role
	}

	if reg.Password == "" {
		pw, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if pw != confirm {
			return fmt.Errorf("passwords do not match")
		}
		reg.Password = pw
	}

	if err := validateRegistration(reg); err != nil {
		return err
	}

	if !app.Session.Register(ctx, reg) {
		return fmt.Errorf("registration failed: %s", app.Session.Err())
	}

	snap := app.Session.Snapshot()
	fmt.Printf("✓ Account created for %s (%s)\n", snap.User.FullName(), snap.User.Email)
	fmt.Printf("  Role: %s\n", snap.User.Role)

	// The signed-up role decides where the user lands next
	switch snap.User.Role {
	case client.RoleClient:
		fmt.Println("\nRun 'freedev projects create' to post your first project.")
	case client.RoleFreedev:
		fmt.Println("\nRun 'freedev projects ls' to browse open projects.")
	default:
		fmt.Println("\nRun 'freedev dashboard' to get started.")
	}

	return nil
}

func promptRole() (client.Role, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("role is required in non-interactive mode (use --role flag)")
	}

	type roleOption struct {
		Label string
		Role  client.Role
	}

	options := []roleOption{
		{Label: "Client - I want to post projects and hire", Role: client.RoleClient},
		{Label: "Freelancer - I want to find projects and work", Role: client.RoleFreedev},
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select an account type",
		Items:     options,
		Templates: templates,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	return options[index].Role, nil
}
