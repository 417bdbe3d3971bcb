package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/client"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/config"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/ui"
)

// listCmd is the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list your chats",
	Long: `List your chats, newest first.

The output includes each chat's name, its id (needed for 'chatctl chat')
and when it was created.`,
	Example: `  # List your chats
  $ chatctl list`,
	RunE: runList,
}

func init() {
	// Silence usage to avoid showing help on every error
	listCmd.SilenceUsage = true
}

func runList(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Printf("\nRun '%s --help' for usage.\n", cmd.CommandPath())
		return fmt.Errorf("invalid arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}

	if !cfg.IsAuthenticated() {
		ui.PrintError("not authenticated, please login first")
		fmt.Println("\nRun 'chatctl login' to authenticate.")
		return fmt.Errorf("authentication required")
	}

	apiClient, err := client.NewAPIClient(cfg.Server, cfg.AccessToken)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	chats, err := apiClient.ListChats(ctx)
	if err != nil {
		ui.PrintError("failed to list chats: %v", err)
		return fmt.Errorf("list operation failed")
	}

	fmt.Println()
	fmt.Println(ui.RenderChatTable(chats))
	fmt.Println(ui.RenderChatSummary(len(chats)))

	return nil
}
