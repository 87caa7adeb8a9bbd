package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/storefront/internal/authapi"
	"github.com/keyxmakerx/storefront/internal/session"
	"github.com/keyxmakerx/storefront/internal/storage"
)

// storageFile is the file under --home holding the CLI's storage.
const storageFile = "storage.json"

var (
	home    string
	apiURL  string
	timeout time.Duration
	verbose bool

	store *session.Store
)

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sfctl",
		Short:         "Storefront account CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".storefront")
			}

			api := authapi.New(apiURL, timeout)
			st := storage.NewFile(filepath.Join(home, storageFile))

			s, err := session.New(cmd.Context(), api, st)
			if err != nil {
				return fmt.Errorf("opening %s: %w", st.Path(), err)
			}
			store = s.WithLogger(logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.storefront)")
	root.PersistentFlags().StringVar(&apiURL, "api", envOr("AUTH_API_URL", "http://127.0.0.1:8000"), "authentication API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(loginCmd(), registerCmd(), whoamiCmd(), logoutCmd(), statusCmd())
	root.SetContext(context.Background())
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
