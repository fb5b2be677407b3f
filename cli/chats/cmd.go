package chats

import (
	"github.com/spf13/cobra"

	"github.com/agenthub/hubchat/engine"
	"github.com/agenthub/hubchat/internal/cli"
	"github.com/agenthub/hubchat/internal/configuration"
)

// NewCmd instantiates and returns the chats command group.
func NewCmd(config *configuration.Config, conversations *engine.Engine) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage saved chats",
	}
	cmd.AddCommand(newListCmd(conversations))
	cmd.AddCommand(newDeleteCmd(conversations))
	return cmd
}

func newListCmd(conversations *engine.Engine) *cobra.Command {
	var opts struct {
		Limit int
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chats, most recently updated first",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conversations.LoadChats(cmd.Context()); err != nil {
				return err
			}

			cli.Title("AGENT HUB CHATS")
			for i, chat := range conversations.Chats() {
				if opts.Limit > 0 && i >= opts.Limit {
					break
				}
				cli.AgentOutput("chat (%s) - %s\n", chat.ID, chat.UpdatedAt.Format("2006-01-02 15:04"))
				cli.Info("  %d queries\n", chat.TotalQueries)
				cli.UserInput("> %s\n", chat.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 50, "maximum number of chats to print")
	return cmd
}

func newDeleteCmd(conversations *engine.Engine) *cobra.Command {
	var opts struct {
		Force bool
	}
	cmd := &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat and all its queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !opts.Force && !cli.QueryUser("Delete chat "+id+"?") {
				return nil
			}
			if err := conversations.LoadChats(cmd.Context()); err != nil {
				return err
			}
			if err := conversations.DeleteChat(cmd.Context(), id); err != nil {
				return err
			}
			cli.Info("deleted chat %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "y", false, "skip the confirmation prompt")
	return cmd
}
