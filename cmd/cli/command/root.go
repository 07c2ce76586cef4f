package command

// root.go defines the root command for the bookhub CLI.
// set up the global flags here.

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookhub/cmd/cli/authentication"
	"bookhub/cmd/cli/command/client"
)

const defaultAPIURL = "http://localhost:8080"

var (
	apiURL string // Global flag for API server URL
	token  string // overrides the stored token for one invocation
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookhub",
	Short: "bookhub - social reading tracker CLI",
	Long: `bookhub talks to the bookhub API. Use it to:
- Search the book catalog
- Shelve books as want to read, currently reading or read, and rate them
- Follow what your friends are reading
- Track your yearly reading challenge

Use "bookhub [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API server URL (default "+defaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BOOKHUB_TOKEN"), "bearer token, overrides the stored login")
}

// currentUser returns the stored credentials, or credentials built from the
// --token flag when one is given.
func currentUser() (*authentication.StoredCredentials, error) {
	if token != "" {
		userID, err := userIDFromToken(token)
		if err != nil {
			return nil, err
		}
		return &authentication.StoredCredentials{AccessToken: token, UserID: userID}, nil
	}
	return authentication.GetTokens()
}

// GetAuthenticatedClient builds a client carrying the caller's token.
func GetAuthenticatedClient() (*client.HTTPClient, *authentication.StoredCredentials, error) {
	creds, err := currentUser()
	if err != nil {
		return nil, nil, err
	}
	c := client.NewHTTPClient(resolveAPIURL(creds))
	c.SetToken(creds.AccessToken)
	return c, creds, nil
}

func resolveAPIURL(creds *authentication.StoredCredentials) string {
	switch {
	case apiURL != "":
		return apiURL
	case creds != nil && creds.APIURL != "":
		return creds.APIURL
	}
	return defaultAPIURL
}

func printLine() {
	fmt.Println("─────────────────────────────────────────────────────────")
}
