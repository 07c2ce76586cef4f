package command

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"bookhub/cmd/cli/authentication"
	"bookhub/cmd/cli/command/client"
	"bookhub/internal/identity"
)

// loginCmd stores a token issued by the identity provider
var loginCmd = &cobra.Command{
	Use:   "login [token]",
	Short: "Store your access token in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := userIDFromToken(args[0])
		if err != nil {
			return err
		}

		creds := &authentication.StoredCredentials{AccessToken: args[0], UserID: userID, APIURL: apiURL}
		if err := client.NewHTTPClient(resolveAPIURL(creds)).Ping(); err != nil {
			color.Yellow("⚠ server not reachable at %s: %v", resolveAPIURL(creds), err)
		}

		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		color.Green("✓ Logged in as %s", userID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("failed to remove token: %w", err)
		}
		color.Green("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := currentUser()
		if err != nil {
			return err
		}
		fmt.Printf("User: %s\nAPI:  %s\n", creds.UserID, resolveAPIURL(creds))
		return nil
	},
}

// userIDFromToken reads the subject out of a token without verifying it;
// the server verifies on every request.
func userIDFromToken(raw string) (string, error) {
	var claims identity.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("malformed token: %w", err)
	}
	if claims.UserID == "" {
		return "", errors.New("token carries no user id")
	}
	return claims.UserID, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
