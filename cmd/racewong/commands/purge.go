package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge <imp_stamp>",
	Short: "Delete every sample of an import and its batch row",
	Args:  cobra.ExactArgs(1),
	RunE:  runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

type purger interface {
	Purge(ctx context.Context, stamp uuid.UUID) (samples, batches int64, err error)
}

func runPurge(cmd *cobra.Command, args []string) error {
	stamp, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid imp_stamp %q: %w", args[0], err)
	}

	cfg := loadConfig()
	var p purger
	if cfg.APIBaseURL != "" {
		p = newRemote(cfg)
	} else {
		st, pool, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		p = st
	}

	samples, batches, err := p.Purge(cmd.Context(), stamp)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "purged %s: %d samples, %d batch rows\n", stamp, samples, batches)
	return nil
}
