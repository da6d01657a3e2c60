// Command panel is the console for the tramite API: it lists, searches and
// deletes records, runs the derivation workflow and moves document files.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kelydev/apiTramite/client"
	"github.com/kelydev/apiTramite/logging"
	"github.com/kelydev/apiTramite/models"
)

var (
	apiURL      string
	sessionPath string
	timeout     time.Duration
	verbose     bool
	local       bool
	pageSize    int
	debounce    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "panel",
	Short: "Console for the municipal document management API",
	Long: `panel works against a running tramite API.

Log in once with 'panel login'; the session is kept in the session file and
refreshed automatically. Resource names accept the old panel paths, so
'documentos/lista' and 'documentos' are the same resource.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return logging.SetupWriter(os.Stderr, level, "console")
	},
}

func init() {
	defaultSession := "tramite-session.json"
	if dir, err := os.UserConfigDir(); err == nil {
		defaultSession = filepath.Join(dir, "tramite", "session.json")
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api", "http://localhost:3000", "API base URL (or TRAMITE_API)")
	flags.StringVar(&sessionPath, "session", defaultSession, "Session file")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&local, "local", false, "Use an in-memory demo store instead of the API (list, browse, create, edit, delete)")
	flags.IntVar(&pageSize, "size", 6, "Rows per page")

	viper.SetEnvPrefix("TRAMITE")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("api", flags.Lookup("api"))

	browseCmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before a search runs")
	listCmd.Flags().Int("page", 1, "Page to show")
	listCmd.Flags().String("search", "", "Free-text filter")
	inboxCmd.Flags().Int("page", 1, "Page to show")
	inboxCmd.Flags().String("search", "", "Free-text filter")
	deriveCmd.Flags().String("obs", "", "Observation")
	rejectCmd.Flags().String("obs", "", "Reason for the rejection (required)")
	_ = rejectCmd.MarkFlagRequired("obs")
	createCmd.Flags().String("data", "", "Record as a JSON object, or - for stdin")
	editCmd.Flags().String("data", "", "Fields to change as a JSON object, or - for stdin")
	loginCmd.Flags().StringP("user", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(receiveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func baseContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// commandContext bounds a command by the request timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(baseContext(cmd), timeout)
}

// newClient creates an API client with the stored session, persisting
// refreshed tokens back to the session file.
func newClient() (*client.Client, error) {
	c := client.New(viper.GetString("api"), timeout)
	s, err := loadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	c.SetSession(s)
	c.OnSession = func(s models.TokenPair) {
		if err := saveSession(sessionPath, s); err != nil {
			log.Warn().Err(err).Msg("could not save session")
		}
	}
	return c, nil
}
