// Package generator produces synthetic, schema-conforming submission files
// so performers can exercise the validation and packaging pipeline before
// their own recognition system emits real output.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reidsubmit/internal/logging"
	"reidsubmit/internal/services"
	"reidsubmit/internal/services/ffprobe"
	"reidsubmit/internal/submission"
)

// videoExtensions are the source video formats the generator will probe.
var videoExtensions = map[string]bool{
	".avi": true,
	".mp4": true,
}

// Prober yields frame count and dimensions for a video file.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Stats, error)
}

// Options configures a generation run.
type Options struct {
	Dataset  string
	Videos   []string
	TaskMode submission.TaskMode
	// Subjects is the identity pool size per video.
	Subjects int
	// Seed fixes the random stream; zero seeds from entropy.
	Seed int64
}

// Generator writes one random output file per dataset video.
type Generator struct {
	opts   Options
	prober Prober
	rng    *rand.Rand
	logger *slog.Logger
}

// New constructs a Generator.
func New(opts Options, prober Prober, logger *slog.Logger) (*Generator, error) {
	if prober == nil {
		return nil, fmt.Errorf("generator: prober is required")
	}
	if len(opts.Videos) == 0 {
		return nil, fmt.Errorf("generator: dataset %q has no videos configured", opts.Dataset)
	}
	if opts.Subjects <= 0 {
		opts.Subjects = 10
	}
	if _, err := submission.ParseTaskMode(string(opts.TaskMode)); err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	var src rand.Source
	if opts.Seed != 0 {
		src = rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)>>1)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		opts:   opts,
		prober: prober,
		rng:    rand.New(src),
		logger: logger.With(logging.String("component", "generator")),
	}, nil
}

// Run locates the source video for every dataset video under videosDir,
// probes its frame metadata, and writes one output file per video into
// outputDir. Every dataset video must have a source video present.
func (g *Generator) Run(ctx context.Context, videosDir, outputDir string) ([]string, error) {
	paths, err := g.locateVideos(videosDir)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(g.opts.Videos))
	for _, video := range g.opts.Videos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats, err := g.prober.Probe(ctx, paths[video])
		if err != nil {
			return nil, err
		}
		records := g.randomRecords(stats)
		path, err := submission.WriteFile(outputDir, video, records)
		if err != nil {
			return nil, err
		}
		g.logger.Info("generated output file",
			logging.String("video", video),
			logging.String("path", path),
			logging.Int("records", len(records)),
			logging.Int("frames", stats.FrameCount),
		)
		written = append(written, path)
	}
	return written, nil
}

// locateVideos maps every dataset video to its source file, searching
// videosDir and its immediate subdirectories. Missing videos are fatal:
// generating a partial example submission would only confuse testing.
func (g *Generator) locateVideos(videosDir string) (map[string]string, error) {
	wanted := make(map[string]bool, len(g.opts.Videos))
	for _, video := range g.opts.Videos {
		wanted[video] = true
	}

	found := make(map[string]string, len(wanted))
	walk := func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read videos directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if !videoExtensions[ext] {
				continue
			}
			base := strings.TrimSuffix(name, filepath.Ext(name))
			if wanted[base] {
				found[base] = filepath.Join(dir, name)
			}
		}
		return nil
	}

	if err := walk(videosDir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(videosDir)
	if err != nil {
		return nil, fmt.Errorf("read videos directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := walk(filepath.Join(videosDir, entry.Name())); err != nil {
				return nil, err
			}
		}
	}

	var missing []string
	for video := range wanted {
		if _, ok := found[video]; !ok {
			missing = append(missing, video)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, services.Wrap(services.ErrNotFound, "generator", "locate videos",
			fmt.Sprintf("no source video for: %s", strings.Join(missing, ", ")), nil)
	}
	return found, nil
}

// randomRecords emits a plausible random track set: for each frame a random
// subset of the identity pool appears, each with a random in-bounds box.
func (g *Generator) randomRecords(stats ffprobe.Stats) []submission.Record {
	var records []submission.Record
	for frame := 0; frame < stats.FrameCount; frame++ {
		count := g.rng.IntN(g.opts.Subjects)
		for _, id := range g.rng.Perm(g.opts.Subjects)[:count] {
			records = append(records, g.randomRecord(uint64(frame), uint64(id), stats))
		}
	}
	return records
}

func (g *Generator) randomRecord(frame, object uint64, stats ffprobe.Stats) submission.Record {
	x := g.rng.Uint64N(stats.Width)
	y := g.rng.Uint64N(stats.Height)
	record := submission.Record{
		FrameID:    frame,
		ObjectID:   object,
		X:          x,
		Y:          y,
		W:          g.rng.Uint64N(stats.Width - x),
		H:          g.rng.Uint64N(stats.Height - y),
		Confidence: g.rng.Float64(),
		ClassID:    submission.ClassPerson + uint64(g.rng.IntN(3)),
		Lat:        math.NaN(),
		Long:       math.NaN(),
		Alt:        float32(math.NaN()),
	}
	if g.opts.TaskMode == submission.TaskReIDGeoLoc {
		record.Lat = g.rng.Float64()*180 - 90
		record.Long = g.rng.Float64()*360 - 180
		record.Alt = float32(g.rng.Float64()*2000 - 1000)
	}
	return record
}
