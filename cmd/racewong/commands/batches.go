package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/redgreat/racewong/internal/models"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List import batches, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runBatches,
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show sample counts per imp_stamp, including orphans",
	Args:  cobra.NoArgs,
	RunE:  runCounts,
}

func init() {
	batchesCmd.Flags().Int("limit", 20, "number of batches to show (0 for all)")
	rootCmd.AddCommand(batchesCmd, countsCmd)
}

type batchLister interface {
	ListBatches(ctx context.Context, limit int) ([]models.Batch, error)
	CountsPerBatch(ctx context.Context) ([]models.BatchCount, error)
}

func lister(cmd *cobra.Command) (batchLister, func(), error) {
	cfg := loadConfig()
	if cfg.APIBaseURL != "" {
		return newRemote(cfg), func() {}, nil
	}
	st, pool, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { pool.Close() }, nil
}

func runBatches(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	l, done, err := lister(cmd)
	if err != nil {
		return err
	}
	defer done()

	batches, err := l.ListBatches(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No batches found")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IMP_STAMP\tFILE_NAME\tSAMPLES\tDURATION\tIMPORTED")
	for _, b := range batches {
		imported := "-"
		if !b.InsertTime.IsZero() {
			imported = humanize.Time(b.InsertTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			b.ImpStamp, b.FileName, humanize.Comma(b.SampleCount),
			b.Duration().Round(time.Millisecond), imported)
	}
	return tw.Flush()
}

func runCounts(cmd *cobra.Command, args []string) error {
	l, done, err := lister(cmd)
	if err != nil {
		return err
	}
	defer done()

	counts, err := l.CountsPerBatch(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IMP_STAMP\tSAMPLES\tBATCH_ROW")
	for _, c := range counts {
		row := "yes"
		if !c.HasBatch {
			row = "missing"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ImpStamp, humanize.Comma(c.Samples), row)
	}
	return tw.Flush()
}
