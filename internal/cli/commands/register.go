package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/client"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/types"
	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/ui"
)

// registerCmd is the register command
var registerCmd = &cobra.Command{
	Use:   "register [server]",
	Short: "create a new account",
	Long: `Create a new account on the chat server.

You will be prompted for a username, email, full name and password.
After registering, run 'chatctl login' to authenticate.

If server is not provided, defaults to http://localhost:8080.`,
	Example: `  # Register on the default server
  $ chatctl register

  # Register on a custom server
  $ chatctl register http://chat.example.com:8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegister,
}

func init() {
	registerCmd.SilenceUsage = true
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server := "http://localhost:8080"
	if len(args) > 0 {
		server = args[0]
	}

	questions := []*survey.Question{
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		},
		{
			Name:     "email",
			Prompt:   &survey.Input{Message: "Email:"},
			Validate: survey.Required,
		},
		{
			Name:     "fullname",
			Prompt:   &survey.Input{Message: "Full name:"},
			Validate: survey.Required,
		},
		{
			Name:     "password",
			Prompt:   &survey.Password{Message: "Password:"},
			Validate: survey.MinLength(6),
		},
	}

	answers := struct {
		Username string
		Email    string
		FullName string `survey:"fullname"`
		Password string
	}{}

	if err := survey.Ask(questions, &answers); err != nil {
		ui.PrintError("failed to read input: %v", err)
		return fmt.Errorf("input failed")
	}

	apiClient, err := client.NewAPIClient(server, "")
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintInfo("Registering on %s...", server)

	user, err := apiClient.Register(ctx, types.RegisterRequest{
		Username: answers.Username,
		Email:    answers.Email,
		FullName: answers.FullName,
		Password: answers.Password,
	})
	if err != nil {
		ui.PrintErrorBox("Registration Failed", err.Error())
		return fmt.Errorf("registration failed")
	}

	successContent := fmt.Sprintf(`Username:   %s
Email:      %s
Full name:  %s`,
		user.Username,
		user.Email,
		user.FullName,
	)
	ui.PrintSuccessBox("✓ Account Created", successContent)

	fmt.Println()
	ui.PrintInfo("Now authenticate with:")
	ui.PrintBold("  chatctl login " + server + " -u " + user.Username)

	return nil
}
