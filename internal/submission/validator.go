package submission

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"reidsubmit/internal/logging"
)

// Options configures a Validator for one packaging invocation. The value is
// read once at construction and never mutated mid-run.
type Options struct {
	// Dataset is the dataset identifier, used only for report labeling.
	Dataset string
	// Videos lists the video identifiers belonging to the dataset. Files
	// named after other videos are rejected; videos without a file are
	// treated as "no detections" and accepted.
	Videos []string
	// TaskMode decides whether the geolocation columns must be NaN.
	TaskMode TaskMode
	// FrameWidth and FrameHeight bound the x/y/w/h columns.
	FrameWidth  uint64
	FrameHeight uint64
}

// Validator checks a directory of candidate output files against the
// submission schema.
type Validator struct {
	opts   Options
	videos map[string]bool
	logger *slog.Logger
}

// NewValidator builds a Validator. A nil logger falls back to a no-op
// logger so library callers do not have to wire logging.
func NewValidator(opts Options, logger *slog.Logger) (*Validator, error) {
	if opts.Dataset == "" {
		return nil, errors.New("validator: dataset is required")
	}
	if len(opts.Videos) == 0 {
		return nil, fmt.Errorf("validator: dataset %q has no videos configured", opts.Dataset)
	}
	if opts.FrameWidth == 0 || opts.FrameHeight == 0 {
		return nil, errors.New("validator: frame bounds must be positive")
	}
	if _, err := ParseTaskMode(string(opts.TaskMode)); err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	videos := make(map[string]bool, len(opts.Videos))
	for _, video := range opts.Videos {
		videos[video] = true
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Validator{
		opts:   opts,
		videos: videos,
		logger: logger.With(logging.String("component", "validator")),
	}, nil
}

// ValidateDir validates every output file under dir and returns a Report
// listing all violations. Filesystem failures (missing directory,
// unreadable file) abort immediately with an error; schema problems never
// do, they accumulate in the report.
func (v *Validator) ValidateDir(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("results directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("read results directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := VideoForFile(entry.Name()); !ok {
			// Stray non-submission files (notes, hidden files) are not
			// part of the archive and not the validator's business.
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	report := &Report{
		Dataset:  v.opts.Dataset,
		TaskMode: v.opts.TaskMode,
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Files++
		video, _ := VideoForFile(name)
		if !v.videos[video] {
			report.Violations = append(report.Violations, Violation{
				File:    name,
				Row:     FileLevelRow,
				Kind:    KindUnknownVideo,
				Message: fmt.Sprintf("video %q is not part of dataset %q", video, v.opts.Dataset),
			})
			continue
		}
		records, violations, err := v.validateFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		report.Records += records
		report.Violations = append(report.Violations, violations...)
		v.logger.Debug("validated file",
			logging.String("file", name),
			logging.Int("records", records),
			logging.Int("violations", len(violations)),
		)
	}

	v.logger.Info("validation finished",
		logging.String("dataset", v.opts.Dataset),
		logging.String("task_mode", string(v.opts.TaskMode)),
		logging.Int("files", report.Files),
		logging.Int("records", report.Records),
		logging.Int("violations", len(report.Violations)),
	)
	return report, nil
}

func (v *Validator) validateFile(path string) (int, []Violation, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parser := &fileParser{
		file: filepath.Base(path),
		bounds: frameBounds{
			width:  v.opts.FrameWidth,
			height: v.opts.FrameHeight,
		},
		mode: v.opts.TaskMode,
	}
	records, violations, err := parser.parse(f)
	if err != nil {
		return 0, nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return records, violations, nil
}
