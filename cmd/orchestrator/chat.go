package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"dialogue-orchestrator/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newChatCommand(v *viper.Viper) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the orchestrator on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			// Logs go to stderr so they don't interleave with replies.
			a, err := buildApp(cmd.Context(), cfg, "stderr")
			if err != nil {
				return err
			}
			defer a.Close()
			return a.repl(cmd.Context(), userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&userID, "user", "local-user", "user id the conversation runs as")
	return cmd
}

// repl runs one conversation until EOF or "exit".
func (a *app) repl(ctx context.Context, userID string, in io.Reader, out io.Writer) error {
	var history models.Conversation
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "exit", "quit":
			return nil
		}

		turn, err := a.dialogue.Turn(ctx, userID, line, history)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n> ", err)
			continue
		}
		fmt.Fprintf(out, "%s\n> ", turn.Reply)
		history = append(history,
			models.Message{Role: models.RoleUser, Content: line},
			models.Message{Role: models.RoleAssistant, Content: turn.Reply},
		)
	}
	return scanner.Err()
}
