package auth

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/agenthub/hubchat/internal/api"
	"github.com/agenthub/hubchat/internal/auth"
	"github.com/agenthub/hubchat/internal/cli"
)

// NewCmd instantiates and returns the auth command group.
func NewCmd(client *api.Client, store *auth.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the session with the agent hub",
	}
	cmd.AddCommand(newLoginCmd(client, store))
	cmd.AddCommand(newSignupCmd(client, store))
	cmd.AddCommand(newLogoutCmd(client, store))
	return cmd
}

func newLoginCmd(client *api.Client, store *auth.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session tokens",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := cli.PromptCredentials()
			if err != nil {
				return err
			}
			pair, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := store.Save(pair); err != nil {
				return err
			}
			cli.Info("logged in as %s\n", email)
			return nil
		},
	}
}

func newSignupCmd(client *api.Client, store *auth.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fullName := ""
			if err := survey.AskOne(&survey.Input{Message: "Full name:"}, &fullName, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
			email, password, err := cli.PromptCredentials()
			if err != nil {
				return err
			}
			pair, err := client.Signup(cmd.Context(), fullName, email, password)
			if err != nil {
				return err
			}
			if err := store.Save(pair); err != nil {
				return err
			}
			cli.Info("account created for %s\n", email)
			return nil
		},
	}
}

func newLogoutCmd(client *api.Client, store *auth.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear stored tokens",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, err := store.Tokens()
			if err != nil {
				return err
			}
			if pair != nil {
				// Server-side revocation is best effort; the local session
				// is cleared either way.
				if err := client.Logout(cmd.Context(), pair.RefreshToken); err != nil {
					cli.ErrorOutput("revoking token: %v\n", err)
				}
			}
			if err := store.Clear(); err != nil {
				return err
			}
			cli.Info("logged out\n")
			return nil
		},
	}
}
