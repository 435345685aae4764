package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/redgreat/racewong/internal/config"
	"github.com/redgreat/racewong/internal/httpx"
	"github.com/redgreat/racewong/internal/loader"
	"github.com/redgreat/racewong/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import <path|dir|s3://bucket/key>...",
	Short: "Import RaceBox CSV exports",
	Long: `Imports session exports. Directories and s3:// prefixes ending in "/" are
expanded to their *.csv files. Each file becomes one import batch named after
its first and last samples, and is skipped if that batch already exists.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	defaults := config.LoadImport()

	f := importCmd.Flags()
	f.Bool("force", false, "import even if a batch with the same file name exists")
	f.Bool("keep-no-fix", defaults.KeepNoFix, "keep samples recorded without a GNSS fix")
	f.Bool("use-file-name", false, "name batches after the export file instead of the session times")
	f.Int("chunk-size", defaults.ChunkSize, "samples per upsert transaction")
	f.Int("workers", defaults.Workers, "concurrent chunk writers")

	rootCmd.AddCommand(importCmd)
}

type csvImporter interface {
	ImportCSV(ctx context.Context, fileName string, r io.Reader) (loader.Result, error)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	f := cmd.Flags()

	force, _ := f.GetBool("force")
	useFileName, _ := f.GetBool("use-file-name")
	opts := loader.OptionsFrom(cfg.Import)
	opts.KeepNoFix, _ = f.GetBool("keep-no-fix")
	opts.ChunkSize, _ = f.GetInt("chunk-size")
	opts.Workers, _ = f.GetInt("workers")
	if cfg.APIBaseURL != "" {
		if err := checkRemoteFlags(cmd); err != nil {
			return err
		}
	}

	src := source.New(cfg.AWSRegion)
	var uris []string
	for _, arg := range args {
		found, err := src.List(ctx, arg)
		if err != nil {
			return err
		}
		uris = append(uris, found...)
	}
	if len(uris) == 0 {
		return errors.New("no exports found")
	}

	var imp csvImporter
	if cfg.APIBaseURL != "" {
		rc := newRemote(cfg)
		rc.upload = httpx.UploadOptions{Force: force, KeepNoFix: opts.KeepNoFix}
		imp = rc
		slog.Debug("importing through api", "url", cfg.APIBaseURL)
	} else {
		st, pool, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		l := loader.New(st, opts)
		if force {
			l = l.Force()
		}
		imp = l
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, uri := range uris {
		res, err := importOne(ctx, src, imp, uri, useFileName)
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case err != nil:
			failed++
			hint := ""
			if loader.IsRetryable(err) {
				hint = " (storage unavailable, safe to rerun)"
			}
			fmt.Fprintf(out, "FAIL  %s: %v%s\n", uri, err, hint)
		case res.AlreadyImported:
			fmt.Fprintf(out, "SKIP  %s: %s already imported\n", uri, res.FileName)
		case res.Empty:
			fmt.Fprintf(out, "EMPTY %s: no samples with a fix (%d invalid, %d without fix)\n",
				uri, res.Invalid, res.NoFix)
		default:
			fmt.Fprintf(out, "OK    %s: %s -> %s, %s new, %s overwritten, %d ms\n",
				uri, res.FileName, res.ImpStamp,
				humanize.Comma(int64(res.Inserted)), humanize.Comma(int64(res.Updated)), res.DurationMS)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(uris))
	}
	return nil
}

// checkRemoteFlags rejects loader tuning flags that the API server owns.
func checkRemoteFlags(cmd *cobra.Command) error {
	for _, name := range []string{"chunk-size", "workers"} {
		if cmd.Flags().Changed(name) {
			return fmt.Errorf("--%s cannot be used with --remote; set it on the api server", name)
		}
	}
	return nil
}

func importOne(ctx context.Context, src *source.Source, imp csvImporter, uri string, useFileName bool) (loader.Result, error) {
	rc, name, err := src.Open(ctx, uri)
	if err != nil {
		return loader.Result{}, err
	}
	defer rc.Close()

	if !useFileName {
		name = ""
	}
	return imp.ImportCSV(ctx, name, rc)
}
