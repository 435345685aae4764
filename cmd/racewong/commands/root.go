package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redgreat/racewong/internal/config"
	"github.com/redgreat/racewong/internal/db"
	"github.com/redgreat/racewong/internal/httpx"
	"github.com/redgreat/racewong/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "racewong",
	Short: "RaceBox telemetry store",
	Long: `Imports RaceBox session exports into PostgreSQL and manages the stored
import batches. Settings come from flags, RACEWONG_* variables, a racewong.yaml
config file, then the service environment (.env included).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		base := config.Base{LogLevel: viper.GetString("log-level")}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: base.SlogLevel(),
		})))
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	defaults := config.LoadCLI()

	pf := rootCmd.PersistentFlags()
	pf.String("database-url", defaults.DatabaseURL, "PostgreSQL connection string")
	pf.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	pf.String("aws-region", defaults.AWSRegion, "AWS region for s3:// exports")
	pf.String("remote", defaults.APIBaseURL, "racewong-api base URL; when set, commands go through the API instead of the database")

	for _, name := range []string{"database-url", "log-level", "aws-region", "remote"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	viper.SetEnvPrefix("RACEWONG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("racewong")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.racewong")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: config file: %v\n", err)
		}
	}
}

// loadConfig merges the environment configuration with flags and the
// config file.
func loadConfig() config.CLI {
	cfg := config.LoadCLI()
	cfg.DatabaseURL = viper.GetString("database-url")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.AWSRegion = viper.GetString("aws-region")
	cfg.APIBaseURL = strings.TrimRight(viper.GetString("remote"), "/")
	return cfg
}

func openStore(ctx context.Context, cfg config.CLI) (*store.Store, *sql.DB, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.Connect(connCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	return store.New(pool), pool, nil
}

func newRemote(cfg config.CLI) *remoteClient {
	return &remoteClient{
		http: httpx.NewClient(cfg.HTTPTimeout, cfg.HTTPRetries),
		base: cfg.APIBaseURL,
	}
}
