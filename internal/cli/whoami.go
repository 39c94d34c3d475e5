package cli

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/useVaf/vaf-cli/internal/credentials"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := credentials.NewStore(confDir)
		if err != nil {
			return err
		}
		token, err := store.Token()
		if err != nil {
			return err
		}
		if token == "" {
			return errors.New("not logged in, run `vaf login` first")
		}

		// The claims are displayed, never trusted: authorization happens
		// server-side on every request.
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Authenticated (opaque token)")
			return nil
		}

		if email, ok := claims["email"].(string); ok && email != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Email:   %s\n", email)
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Account: %s\n", sub)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Expires: %s\n", exp.Time.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}
