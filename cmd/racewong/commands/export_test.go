package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/redgreat/racewong/internal/models"
	"github.com/redgreat/racewong/internal/racecsv"
)

func TestWriteExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	in := []models.Sample{
		{ITOW: 1, Year: 2025, Month: 1, Day: 15, FixStatus: models.Fix3D, Latitude: 31.2, Longitude: 121.4},
		{ITOW: 2, Year: 2025, Month: 1, Day: 15, FixStatus: models.FixUnknown, Latitude: 31.3, Longitude: 121.5},
	}

	if err := writeExportFile(path, in); err != nil {
		t.Fatalf("writeExportFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	out, bad, err := racecsv.ReadAll(f)
	if err != nil || len(bad) != 0 {
		t.Fatalf("ReadAll: err=%v bad=%v", err, bad)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("read back %+v, want %+v", out, in)
	}
}

func TestWriteExportFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.csv")
	if err := writeExportFile(path, nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
