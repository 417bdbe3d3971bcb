package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/client"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/config"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/ui"
)

// createCmd is the create command
var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "create a new chat",
	Long: `Create a new chat owned by your account.

The server caps the number of chats per account; once the limit is reached
creation fails until old chats age out.`,
	Example: `  # Create a chat
  $ chatctl create "common room"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.SilenceUsage = true
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := strings.Join(args, " ")

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

	chat, err := apiClient.CreateChat(ctx, name)
	if err != nil {
		ui.PrintError("failed to create chat: %v", err)
		return fmt.Errorf("create operation failed")
	}

	ui.PrintSuccess("chat %q created", chat.Name)
	fmt.Println()
	ui.PrintInfo("Start talking with:")
	ui.PrintBold("  chatctl chat " + chat.ID)

	return nil
}
