package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/client"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/config"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/types"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/ui"
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat <chat-id or name>",
	Short: "start an interactive chat session",
	Long: `Open a live session in one of your chats.

The stored history is replayed first, then every line you type is sent to
the server and answered in character. Open the same chat from a second
terminal and both sessions see each other's messages live.

Type /quit (or press Ctrl-D) to leave. The conversation is persisted
server-side, so you can pick it up again any time.`,
	Example: `  # Chat by id
  $ chatctl chat 7d9f1c2e-5a7b-4f10-9e2d-3c8b1a6f4e90

  # Chat by name
  $ chatctl chat "common room"`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
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

	chat, err := resolveChat(apiClient, args[0])
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("chat lookup failed")
	}

	stream, err := apiClient.ConnectChat(chat.ID)
	if err != nil {
		ui.PrintError("failed to connect: %v", err)
		return fmt.Errorf("connection failed")
	}
	defer stream.Close()

	ui.ClearScreen()
	ui.PrintChatWelcomeBanner(chat.Name)
	fmt.Println()

	// Frames arrive independently of what we type: history replay first,
	// then live traffic, including messages sent from other sessions of
	// the same chat.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			frame, err := stream.Recv()
			if err != nil {
				ui.PrintWarning("connection closed: %v", err)
				return
			}
			fmt.Println(ui.RenderFrame(frame))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-done:
			return nil
		default:
		}

		if !scanner.Scan() {
			return nil
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" || text == "/exit" {
			return nil
		}

		if err := stream.Send(text); err != nil {
			ui.PrintError("failed to send: %v", err)
			return fmt.Errorf("send failed")
		}
	}
}

// resolveChat accepts either a chat id or a chat name and returns the chat.
func resolveChat(apiClient *client.APIClient, arg string) (*types.Chat, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chats, err := apiClient.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	for i := range chats {
		if chats[i].ID == arg {
			return &chats[i], nil
		}
	}
	for i := range chats {
		if strings.EqualFold(chats[i].Name, arg) {
			return &chats[i], nil
		}
	}

	return nil, fmt.Errorf("no chat with id or name %q, run 'chatctl list'", arg)
}
