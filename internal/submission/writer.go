package submission

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes records as a schema-conforming output file for the
// given video, creating parent directories as needed. The synthetic
// generator and tests both produce files through this path so everything
// the repository emits round-trips through the validator.
func WriteFile(dir, video string, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure output directory: %w", err)
	}
	path := filepath.Join(dir, FileForVideo(video))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i, record := range records {
		if err := w.Write(record.Row()); err != nil {
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, f.Close()
}
