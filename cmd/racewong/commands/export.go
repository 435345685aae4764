package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/redgreat/racewong/internal/models"
	"github.com/redgreat/racewong/internal/racecsv"
)

var exportCmd = &cobra.Command{
	Use:   "export <imp_stamp>",
	Short: "Write the samples of an import as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	stamp, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid imp_stamp %q: %w", args[0], err)
	}

	st, pool, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer pool.Close()

	samples, err := st.SamplesByBatch(cmd.Context(), stamp)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples for imp_stamp %s", stamp)
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return racecsv.WriteCSV(cmd.OutOrStdout(), samples)
	}
	if err := writeExportFile(path, samples); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d samples to %s\n", len(samples), path)
	return nil
}

// writeExportFile writes samples to path and reports a failed close.
func writeExportFile(path string, samples []models.Sample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return racecsv.WriteCSV(f, samples)
}
