package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	username      string
	password      string
	expiresInMins int
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in and inspect the authenticated user",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange credentials for a token pair",
	Long: `Log in with --username and --password, or with auth.username and
auth.password from the config. The tokens are printed so they can be stored
as auth.token.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, pass := credentials()
		login, err := client.Auth.Login(cmd.Context(), user, pass, expiresInMins)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if asJSON {
			return printJSON(login)
		}

		fmt.Printf("✓ Logged in as %s (ID: %d)\n", login.Username, login.ID)
		fmt.Printf("Access token:  %s\n", login.AccessToken)
		fmt.Printf("Refresh token: %s\n", login.RefreshToken)
		return nil
	},
}

var authMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the user owning the configured token",
	Long: `Show the authenticated user. The token comes from auth.token; without one
the configured credentials are used to log in first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := cfg.Auth.Token
		if token == "" {
			user, pass := credentials()
			login, err := client.Auth.Authenticate(cmd.Context(), user, pass)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			token = login.AccessToken
		}

		me, err := client.Auth.Me(cmd.Context(), token)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(me)
		}

		fmt.Printf("%s (%s)\n", me.FullName(), me.Username)
		fmt.Printf("- ID: %d\n", me.ID)
		fmt.Printf("- Email: %s\n", me.Email)
		fmt.Printf("- Role: %s\n", me.Role)
		return nil
	},
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh <refresh-token>",
	Short: "Exchange a refresh token for a new token pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := client.Auth.Refresh(cmd.Context(), args[0], expiresInMins)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
		if asJSON {
			return printJSON(tokens)
		}

		fmt.Printf("Access token:  %s\n", tokens.AccessToken)
		fmt.Printf("Refresh token: %s\n", tokens.RefreshToken)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authMeCmd, authRefreshCmd)

	authCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username (default from auth.username)")
	authCmd.PersistentFlags().StringVar(&password, "password", "", "password (default from auth.password)")
	authCmd.PersistentFlags().IntVar(&expiresInMins, "expires", 0, "token lifetime in minutes")
}

// credentials returns the flag values, falling back to the config
func credentials() (string, string) {
	user, pass := username, password
	if user == "" {
		user = cfg.Auth.Username
	}
	if pass == "" {
		pass = cfg.Auth.Password
	}
	return user, pass
}
