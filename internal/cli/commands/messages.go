package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMessagesCmd creates the messages command. Messaging is not live on the
// platform yet; this mirrors the web app's empty-state page.
func NewMessagesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "Show your conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			fmt.Println("Messages")
			fmt.Println("\nNo messages yet.")
			fmt.Println("Conversations will show up here once you start talking to other users.")
			return nil
		},
	}
}
