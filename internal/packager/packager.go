package packager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"reidsubmit/internal/fileutil"
	"reidsubmit/internal/history"
	"reidsubmit/internal/logging"
	"reidsubmit/internal/preflight"
	"reidsubmit/internal/services/reidhota"
	"reidsubmit/internal/submission"
)

// lockFile is created inside the results directory for the duration of a
// packaging run; each run owns its results directory exclusively.
const lockFile = ".reidsubmit.lock"

// freeSpaceSlack is added to the raw payload size when checking the
// output filesystem, covering archive overhead and the temp file.
const freeSpaceSlack = 16 << 20

// ErrLocked indicates another packaging run holds the results directory.
var ErrLocked = errors.New("results directory is locked by another packaging run")

// Scorer is the external metrics collaborator consumed as a black box.
type Scorer interface {
	Evaluate(ctx context.Context, resultsDir, groundTruthDir string, videos []string) (*reidhota.Report, error)
}

// Recorder persists packaging runs. *history.Store satisfies it.
type Recorder interface {
	RecordRun(ctx context.Context, run history.Run) (history.Run, error)
}

// Options configures a Packager for one invocation.
type Options struct {
	Leaderboard string
	Dataset     string
	// Name is the submission name chosen by the performer.
	Name     string
	Videos   []string
	TaskMode submission.TaskMode
	// FrameWidth and FrameHeight are forwarded to the validator.
	FrameWidth  uint64
	FrameHeight uint64
}

// Result reports a completed packaging run.
type Result struct {
	Report      *submission.Report
	ArchivePath string
	ArchiveSHA  string
	// Metrics holds the external score report when ground truth was
	// supplied and scoring succeeded.
	Metrics *reidhota.Report
	// MetricsErr carries a scoring failure. It never invalidates the
	// archive; callers surface it alongside the success output.
	MetricsErr error
}

// Packager runs the validate → archive → score pipeline.
type Packager struct {
	opts      Options
	validator *submission.Validator
	scorer    Scorer
	recorder  Recorder
	logger    *slog.Logger
}

// New constructs a Packager. scorer and recorder may be nil to disable the
// respective side branches.
func New(opts Options, scorer Scorer, recorder Recorder, logger *slog.Logger) (*Packager, error) {
	if err := checkNameComponent("submission name", opts.Name); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	validator, err := submission.NewValidator(submission.Options{
		Dataset:     opts.Dataset,
		Videos:      opts.Videos,
		TaskMode:    opts.TaskMode,
		FrameWidth:  opts.FrameWidth,
		FrameHeight: opts.FrameHeight,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Packager{
		opts:      opts,
		validator: validator,
		scorer:    scorer,
		recorder:  recorder,
		logger:    logger.With(logging.String("component", "packager")),
	}, nil
}

// ArchiveName returns the canonical archive filename,
// <leaderboard>_<dataset>_<name>.zip.
func (p *Packager) ArchiveName() string {
	return fmt.Sprintf("%s_%s_%s.zip", p.opts.Leaderboard, p.opts.Dataset, p.opts.Name)
}

// Package validates resultsDir and, on success, writes the canonical
// archive into outputDir. When groundTruthDir is non-empty the external
// scorer runs after the archive exists; its failure lands in
// Result.MetricsErr rather than the returned error.
//
// On validation failure the returned Result still carries the full report
// and the error satisfies errors.Is(err, submission.ErrSchema).
func (p *Packager) Package(ctx context.Context, resultsDir, outputDir, groundTruthDir string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output directory: %w", err)
	}
	checks := []preflight.Result{
		preflight.CheckDirectoryAccess("results directory", resultsDir),
		preflight.CheckDirectoryAccess("output directory", outputDir),
	}
	if failure, failed := preflight.FirstFailure(checks); failed {
		return nil, fmt.Errorf("preflight %s: %s", failure.Name, failure.Detail)
	}

	lock := flock.New(filepath.Join(resultsDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock results directory: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	report, err := p.validator.ValidateDir(ctx, resultsDir)
	if err != nil {
		return nil, err
	}
	result := &Result{Report: report}
	if !report.OK() {
		p.record(ctx, report, history.OutcomeRejected, "", "")
		return result, report.Err()
	}

	files, totalSize, err := p.acceptedFiles(resultsDir)
	if err != nil {
		return nil, err
	}
	// Staging duplicates the payload next to the archive, so require room
	// for both.
	if check := preflight.CheckFreeSpace("output space", outputDir, 2*uint64(totalSize)+freeSpaceSlack); !check.Passed {
		return nil, fmt.Errorf("preflight: %s", check.Detail)
	}

	staged, cleanup, err := p.stageFiles(outputDir, files)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	archivePath := filepath.Join(outputDir, p.ArchiveName())
	if err := writeArchive(archivePath, staged); err != nil {
		return nil, err
	}
	sha, err := fileutil.HashFile(archivePath)
	if err != nil {
		return nil, err
	}
	result.ArchivePath = archivePath
	result.ArchiveSHA = sha
	p.logger.Info("archive written",
		logging.String("path", archivePath),
		logging.String("sha256", sha),
		logging.Int("files", len(files)),
	)

	if groundTruthDir != "" && p.scorer != nil {
		metrics, err := p.scorer.Evaluate(ctx, resultsDir, groundTruthDir, p.opts.Videos)
		if err != nil {
			// The archive is already valid and on disk; scoring problems
			// are surfaced without undoing it.
			p.logger.Warn("metrics computation failed", logging.Error(err))
			result.MetricsErr = err
		} else {
			result.Metrics = metrics
		}
	}

	p.record(ctx, report, history.OutcomePackaged, archivePath, sha)
	return result, nil
}

// stageFiles copies the accepted output files into a private staging
// directory with integrity verification, so the archive is built from an
// immutable snapshot rather than from files another process could still be
// writing. The returned cleanup removes the staging directory.
func (p *Packager) stageFiles(outputDir string, files []string) ([]string, func(), error) {
	stagingDir, err := os.MkdirTemp(outputDir, ".reidsubmit-stage-")
	if err != nil {
		return nil, nil, fmt.Errorf("create staging directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(stagingDir) }

	staged := make([]string, 0, len(files))
	for _, path := range files {
		dst := filepath.Join(stagingDir, filepath.Base(path))
		if err := fileutil.CopyFileVerified(path, dst); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("stage %s: %w", filepath.Base(path), err)
		}
		staged = append(staged, dst)
	}
	return staged, cleanup, nil
}

// acceptedFiles lists the validated output files in resultsDir along with
// their combined size.
func (p *Packager) acceptedFiles(resultsDir string) ([]string, int64, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return nil, 0, fmt.Errorf("read results directory: %w", err)
	}
	var files []string
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := submission.VideoForFile(entry.Name()); !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, 0, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		total += info.Size()
		files = append(files, filepath.Join(resultsDir, entry.Name()))
	}
	return files, total, nil
}

func (p *Packager) record(ctx context.Context, report *submission.Report, outcome history.Outcome, archivePath, sha string) {
	if p.recorder == nil {
		return
	}
	_, err := p.recorder.RecordRun(ctx, history.Run{
		Leaderboard: p.opts.Leaderboard,
		Dataset:     p.opts.Dataset,
		Submission:  p.opts.Name,
		TaskMode:    string(p.opts.TaskMode),
		Outcome:     outcome,
		Files:       report.Files,
		Records:     report.Records,
		Violations:  len(report.Violations),
		ArchivePath: archivePath,
		ArchiveSHA:  sha,
	})
	if err != nil {
		// History is advisory; a broken local database must not block a
		// valid submission.
		p.logger.Warn("history record failed", logging.Error(err))
	}
}

func checkNameComponent(what, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", what)
	}
	if strings.ContainsAny(value, "_/\\") {
		return fmt.Errorf("%s %q must not contain underscores or path separators (it is an archive name component)", what, value)
	}
	return nil
}
