// Package testsupport provides helpers for constructing test
// configurations and submission fixtures.
package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"reidsubmit/internal/config"
	"reidsubmit/internal/submission"
)

// TestVideos is the video list used by fixture datasets.
var TestVideos = []string{
	"vlincs-cam-a",
	"vlincs-cam-b",
}

// NewConfig produces a config seeded with unique temp paths per test and a
// small fixture dataset.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.History.Path = filepath.Join(base, "history.db")
	cfg.Datasets = map[string][]string{
		"fixture": append([]string(nil), TestVideos...),
	}
	cfg.Validation.FrameWidth = 1920
	cfg.Validation.FrameHeight = 1080
	return &cfg
}

// ValidRecord returns a record that passes every schema constraint under
// ReID-only task mode.
func ValidRecord() submission.Record {
	return submission.Record{
		FrameID:    0,
		ObjectID:   1,
		X:          10,
		Y:          10,
		W:          50,
		H:          80,
		Confidence: 0.9,
		ClassID:    submission.ClassPerson,
		Lat:        math.NaN(),
		Long:       math.NaN(),
		Alt:        float32(math.NaN()),
	}
}

// WriteRecords writes a schema-conforming output file for video into dir.
func WriteRecords(t testing.TB, dir, video string, records []submission.Record) string {
	t.Helper()
	path, err := submission.WriteFile(dir, video, records)
	if err != nil {
		t.Fatalf("write records for %s: %v", video, err)
	}
	return path
}

// WriteRawFile writes arbitrary content to dir/name, creating parent
// directories. Used for malformed fixtures the Record writer cannot emit.
func WriteRawFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteGroundTruth lays out <dir>/<video>/gt.csv fixtures for each video.
func WriteGroundTruth(t testing.TB, dir string, videos []string, records []submission.Record) {
	t.Helper()
	for _, video := range videos {
		videoDir := filepath.Join(dir, video)
		if err := os.MkdirAll(videoDir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", videoDir, err)
		}
		if _, err := submission.WriteFile(videoDir, "gt", records); err != nil {
			t.Fatalf("write ground truth for %s: %v", video, err)
		}
	}
}
