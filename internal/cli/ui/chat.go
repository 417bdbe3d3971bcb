package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/types"
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // blue

	systemStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")) // cyan

	errorFrameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	timestampStyle = lipgloss.NewStyle().
			Faint(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)
)

// RenderFrame formats one websocket frame for the terminal.
func RenderFrame(frame *types.Frame) string {
	if frame.Error {
		return errorFrameStyle.Render("! " + frame.Message)
	}

	label := userStyle.Render("you")
	if frame.Sender == "SYSTEM" {
		label = systemStyle.Render("harry")
	}

	ts := formatTimestamp(frame.Timestamp)
	if ts != "" {
		return fmt.Sprintf("%s %s  %s", timestampStyle.Render(ts), label, frame.Message)
	}
	return fmt.Sprintf("%s  %s", label, frame.Message)
}

// RenderChatTable formats the chat list as an aligned table.
func RenderChatTable(chats []types.Chat) string {
	if len(chats) == 0 {
		return "No chats yet. Create one with 'chatctl create <name>'."
	}

	nameWidth := lo.Max(append(lo.Map(chats, func(c types.Chat, _ int) int {
		return len(c.Name)
	}), len("NAME")))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s  %-36s  %s", nameWidth, "NAME", "ID", "CREATED")))
	b.WriteString("\n")

	for _, chat := range chats {
		b.WriteString(fmt.Sprintf("%-*s  %-36s  %s\n",
			nameWidth, chat.Name, chat.ID, formatTimestamp(chat.CreatedAt)))
	}

	return b.String()
}

// RenderChatSummary returns a one-line footer for the chat list.
func RenderChatSummary(count int) string {
	noun := "chats"
	if count == 1 {
		noun = "chat"
	}
	return timestampStyle.Render(fmt.Sprintf("%d %s", count, noun))
}

// formatTimestamp renders a server timestamp in local time; unknown formats
// pass through unchanged.
func formatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Local().Format("2006-01-02 15:04:05")
		}
	}
	return ts
}
