package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/agenthub/hubchat/cli/chat/session"
	"github.com/agenthub/hubchat/engine"
	"github.com/agenthub/hubchat/internal/configuration"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, conversations *engine.Engine) *cobra.Command {
	var opts struct {
		ChatID   string
		Continue bool
		Agents   []string
		Files    []string
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive conversation with the agent hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			agents := opts.Agents
			if len(agents) == 0 {
				agents = config.Chat.DefaultAgents
			}
			files := append(opts.Files, args...)

			if err := conversations.LoadChats(ctx); err != nil {
				return err
			}

			// Resolve the chat to open, if any.
			title := ""
			if opts.Continue && opts.ChatID == "" {
				chats := conversations.Chats()
				if len(chats) == 0 {
					return errors.New("no chat to continue")
				}
				opts.ChatID = chats[0].ID
			}
			if opts.ChatID != "" {
				chat, ok := conversations.Chat(opts.ChatID)
				if !ok {
					return errors.Wrapf(engine.ErrChatNotFound, "chat %s", opts.ChatID)
				}
				title = chat.Title
				conversations.ResetCursor(opts.ChatID)
				if err := conversations.LoadChatQueries(ctx, opts.ChatID); err != nil {
					return err
				}
			}

			m, err := session.New(ctx, config, conversations, opts.ChatID, title, agents, files)
			if err != nil {
				return err
			}

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithFilter(m.Filter()),
				tea.WithMouseCellMotion(),
				tea.WithReportFocus(),
			)
			m.SetProgram(p)

			if _, err := p.Run(); err != nil {
				return errors.Wrap(err, "running chat")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ChatID, "id", "", "open a specific chat")
	cmd.Flags().BoolVarP(&opts.Continue, "continue", "c", false, "continue the most recent chat")
	cmd.Flags().StringSliceVarP(&opts.Agents, "agents", "a", nil, "agents to route the query to (comma separated)")
	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "files to attach to the first message")

	cmd.RegisterFlagCompletionFunc("id", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, chat := range conversations.Chats() {
			if strings.HasPrefix(chat.ID, toComplete) {
				ids = append(ids, chat.ID)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
