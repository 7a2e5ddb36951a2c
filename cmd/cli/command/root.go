package command

// root.go defines the root command for the animehub CLI.
// global flags and the shared client helpers live here.

import (
	"context"
	"fmt"
	"os"
	"time"

	"animehub/cmd/cli/authentication"
	"animehub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL  string        // API server URL
	timeout time.Duration // per-command deadline
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "animehub",
	Short: "animehub - AnimeHub Command Line Interface",
	Long: `animehub is a tool for interacting with the AnimeHub API. With it you can:
- Browse trending anime and look up details
- Keep a watchlist, a watched list with ratings, and favorites
- See how many titles sit in each list

Use "animehub [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("ANIMEHUB_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL (env ANIMEHUB_API)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request deadline")

	rootCmd.AddCommand(authCmd, trendingCmd, showCmd, rateCmd, statsCmd)
	for _, cmd := range listCommands() {
		rootCmd.AddCommand(cmd)
	}
}

// GetAuthenticatedClient returns a client carrying the stored session
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	c := client.NewHTTPClient(apiURL).WithTokens(authentication.KeyringStore{})
	if !c.HasToken() {
		return nil, authentication.ErrNotLoggedIn
	}
	return c, nil
}

// GetOptionalClient attaches the session when one exists
func GetOptionalClient() *client.HTTPClient {
	return client.NewHTTPClient(apiURL).WithTokens(authentication.KeyringStore{})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
