package ask

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/agenthub/hubchat/engine"
	"github.com/agenthub/hubchat/internal/cli"
	"github.com/agenthub/hubchat/internal/configuration"
)

// NewCmd instantiates and returns the ask command, a plain-terminal
// alternative to the full-screen chat session. With arguments it sends a
// single question and exits; without, it loops.
func NewCmd(config *configuration.Config, conversations *engine.Engine) *cobra.Command {
	var opts struct {
		ChatID   string
		Continue bool
		Agents   []string
		Files    []string
	}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the agent hub without the full-screen interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			agents := opts.Agents
			if len(agents) == 0 {
				agents = config.Chat.DefaultAgents
			}

			if err := conversations.LoadChats(ctx); err != nil {
				return err
			}
			if opts.Continue && opts.ChatID == "" {
				chats := conversations.Chats()
				if len(chats) == 0 {
					return errors.New("no chat to continue")
				}
				opts.ChatID = chats[0].ID
			}

			cli.Title("AGENT HUB")
			if opts.ChatID != "" {
				chat, ok := conversations.Chat(opts.ChatID)
				if !ok {
					return errors.Wrapf(engine.ErrChatNotFound, "chat %s", opts.ChatID)
				}
				conversations.ResetCursor(opts.ChatID)
				if err := conversations.LoadChatQueries(ctx, opts.ChatID); err != nil {
					return err
				}
				chat, _ = conversations.Chat(opts.ChatID)
				printHistory(chat)
			}

			files := opts.Files
			send := func(message string) error {
				timeout := time.Duration(config.RequestTimeout) * time.Second
				sendCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				request := &engine.SendRequest{
					ChatID:     opts.ChatID,
					Message:    message,
					Files:      files,
					Agents:     agents,
					SyncCounts: true,
				}
				files = nil

				if opts.ChatID == "" {
					chatID, err := conversations.CreateChat(sendCtx, request)
					if err != nil {
						return err
					}
					opts.ChatID = chatID
				} else if err := conversations.SendQuery(sendCtx, request); err != nil {
					return err
				}
				printOutcome(conversations, opts.ChatID)
				return nil
			}

			if len(args) > 0 {
				return send(strings.Join(args, " "))
			}

			for {
				text, err := cli.PromptUser()
				if err == readline.ErrInterrupt || err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if strings.TrimSpace(text) == "" {
					continue
				}
				if err := send(text); err != nil {
					cli.ErrorOutput("%v\n", err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&opts.ChatID, "id", "", "continue a specific chat")
	cmd.Flags().BoolVarP(&opts.Continue, "continue", "c", false, "continue the most recent chat")
	cmd.Flags().StringSliceVarP(&opts.Agents, "agents", "a", nil, "agents to route the query to (comma separated)")
	cmd.Flags().StringSliceVarP(&opts.Files, "file", "f", nil, "files to attach to the first message")
	return cmd
}

func printHistory(chat *engine.Chat) {
	for _, query := range chat.Queries {
		cli.UserInput("> %s\n", query.Message)
		if query.Response != "" {
			cli.AgentOutput(query.Response + "\n")
		}
	}
	cli.Separator()
}

// printOutcome prints the latest exchange of a chat.
func printOutcome(conversations *engine.Engine, chatID string) {
	chat, ok := conversations.Chat(chatID)
	if !ok || len(chat.Queries) == 0 {
		return
	}
	query := chat.Queries[len(chat.Queries)-1]
	switch query.Status {
	case engine.QueryStatusFailed:
		cli.ErrorOutput("%s\n", query.ErrorMessage)
	default:
		if query.AgentUsed != "" {
			cli.Info("[%s]\n", query.AgentUsed)
		}
		cli.AgentOutput(query.Response + "\n")
	}
}
