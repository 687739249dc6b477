package packager

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// archiveEpoch is the fixed modification time stamped on every archive
// entry. Re-running package over unchanged input must produce
// byte-identical archives, so wall-clock time never leaks into them.
var archiveEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// writeArchive zips the named files (flat, no directories) into dest.
// The archive is assembled in a temp file and renamed into place so a
// failed run never leaves a truncated archive behind. Entry order is
// lexicographic by name for deterministic output.
func writeArchive(dest string, files []string) (err error) {
	sorted := append([]string(nil), files...)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".reidsubmit-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, path := range sorted {
		if err = addEntry(zw, path); err != nil {
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp archive: %w", err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("move archive into place: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := &zip.FileHeader{
		Name:     filepath.Base(path),
		Method:   zip.Deflate,
		Modified: archiveEpoch,
	}
	header.SetMode(0o644)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", header.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}
	return nil
}
