// Command cli is a terminal client for the showroom. Login and favorites are
// kept in a local storage file between runs; the catalog itself is reseeded
// on every run.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/config"
)

const clientID = "cli"

// options are the persistent flags shared by every command.
type options struct {
	driver     string
	dbPath     string
	seedFile   string
	bcryptCost int
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "humbleautos",
		Short:        "Browse the Humble Autos showroom from the terminal",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.driver, "driver", config.DriverBolt, "storage backend for the local session: bolt or sqlite")
	flags.StringVar(&opts.dbPath, "db", defaultDBPath(), "path of the local storage file")
	flags.StringVar(&opts.seedFile, "seed", "", "YAML vehicle catalog to start from instead of the built-in one")
	flags.IntVar(&opts.bcryptCost, "bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for hashing passwords")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newCarsCmd(opts),
		newCarCmd(opts),
		newFeaturedCmd(opts),
		newFavoriteCmd(opts),
		newFavoritesCmd(opts),
		newCommentCmd(opts),
		newLikeCmd(opts),
		newStatsCmd(opts),
		newHashPasswordCmd(opts),
	)
	return root
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "humbleautos.db"
	}
	return filepath.Join(dir, "humbleautos", "client.db")
}

// withClient opens local storage, builds the client on top of it and closes
// the storage when fn returns.
func withClient(ctx context.Context, opts *options, fn func(ctx context.Context, c *app.Client) error) error {
	switch opts.driver {
	case config.DriverBolt, config.DriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q (want bolt or sqlite)", opts.driver)
	}
	if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0o700); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	kv, err := app.OpenStorage(&config.Config{StorageDriver: opts.driver, DBPath: opts.dbPath})
	if err != nil {
		return err
	}
	defer kv.Close()

	demo, err := app.LoadSeed(opts.seedFile, opts.bcryptCost)
	if err != nil {
		return err
	}
	slog.Debug("Opened local storage", "driver", opts.driver, "path", opts.dbPath)
	return fn(ctx, app.NewClient(ctx, clientID, kv, demo, app.Options{BcryptCost: opts.bcryptCost}))
}
