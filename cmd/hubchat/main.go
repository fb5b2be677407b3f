package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthub/hubchat/cli/ask"
	authcli "github.com/agenthub/hubchat/cli/auth"
	"github.com/agenthub/hubchat/cli/chat"
	"github.com/agenthub/hubchat/cli/chats"
	"github.com/agenthub/hubchat/engine"
	"github.com/agenthub/hubchat/internal/api"
	"github.com/agenthub/hubchat/internal/auth"
	"github.com/agenthub/hubchat/internal/configuration"
)

const configFilepath = "~/.config/hubchat/config.json"

var rootCmd = &cobra.Command{
	Use:     "hubchat",
	Short:   "A CLI for the Agent Hub",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	// Create the token store
	store, err := auth.NewStore(config.Database)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: time.Duration(config.RequestTimeout) * time.Second}
	host := strings.TrimRight(config.APIHost, "/")
	transport := auth.NewTransport(httpClient, store, host+"/auth/refresh")
	client := api.NewClient(host, transport, httpClient)
	conversations := engine.New(client)

	rootCmd.AddCommand(chat.NewCmd(config, conversations))
	rootCmd.AddCommand(chats.NewCmd(config, conversations))
	rootCmd.AddCommand(ask.NewCmd(config, conversations))
	rootCmd.AddCommand(authcli.NewCmd(client, store))
	rootCmd.Execute()
}
