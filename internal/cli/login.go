package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/useVaf/vaf-cli/internal/credentials"
	"github.com/useVaf/vaf-cli/internal/userconf"
	"github.com/useVaf/vaf-cli/pkg/api/client"
)

var (
	loginEmail    string
	loginPassword string
	loginAPIURL   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store an API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(loginEmail) == "" {
			return errors.New("--email is required")
		}

		secret := strings.TrimSpace(loginPassword)
		if secret == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			secret = string(raw)
		}
		if secret == "" {
			return errors.New("password must not be empty")
		}

		base := apiBaseURL()
		if loginAPIURL != "" {
			base = loginAPIURL
		}
		api, err := client.New(base, "")
		if err != nil {
			return err
		}
		resp, err := api.Login(cmd.Context(), loginEmail, secret)
		if err != nil {
			return err
		}

		store, err := credentials.NewStore(confDir)
		if err != nil {
			return err
		}
		if err := store.SetToken(resp.Token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		if loginAPIURL != "" {
			settings.APIURL = loginAPIURL
			if err := userconf.Save(confDir, settings); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", resp.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore(confDir)
		if err != nil {
			return err
		}
		if err := store.ClearToken(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginAPIURL, "api-url", "", "API base URL to log in against and remember")
}
