package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/freedevconnect/freedev/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to FreeDev Connect",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set FREEDEV_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set FREEDEV_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, app *App, email, password string) error {
	// Environment fallbacks, useful for scripting
	if email == "" {
		email = os.Getenv("FREEDEV_EMAIL")
	}
	if password == "" {
		password = os.Getenv("FREEDEV_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or FREEDEV_EMAIL env var)")
	}

	if password == "" {
		pw, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		password = pw
	}

	// Validated before any network call
	if err := validateLogin(email, password); err != nil {
		return err
	}

	if !app.Session.Login(ctx, client.Credentials{Email: email, Password: password}) {
		return fmt.Errorf("login failed: %s", app.Session.Err())
	}

	snap := app.Session.Snapshot()
	fmt.Printf("✓ Signed in as %s (%s)\n", snap.User.FullName(), snap.User.Email)
	fmt.Printf("  Role: %s\n", snap.User.Role)
	fmt.Println("\nRun 'freedev dashboard' to see your overview.")

	return nil
}

// promptPassword reads a password without echo when stdin is a terminal
func promptPassword(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or FREEDEV_PASSWORD env var)")
	}

	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return string(bytePassword), nil
}
