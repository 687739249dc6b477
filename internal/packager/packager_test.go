package packager_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reidsubmit/internal/history"
	"reidsubmit/internal/packager"
	"reidsubmit/internal/services/reidhota"
	"reidsubmit/internal/submission"
	"reidsubmit/internal/testsupport"
)

type fakeScorer struct {
	report *reidhota.Report
	err    error
	calls  int
}

func (s *fakeScorer) Evaluate(_ context.Context, _, _ string, _ []string) (*reidhota.Report, error) {
	s.calls++
	return s.report, s.err
}

type fakeRecorder struct {
	runs []history.Run
	err  error
}

func (r *fakeRecorder) RecordRun(_ context.Context, run history.Run) (history.Run, error) {
	r.runs = append(r.runs, run)
	return run, r.err
}

func testOptions() packager.Options {
	return packager.Options{
		Leaderboard: "takehome",
		Dataset:     "fixture",
		Name:        "baseline",
		Videos:      testsupport.TestVideos,
		TaskMode:    submission.TaskReID,
		FrameWidth:  1920,
		FrameHeight: 1080,
	}
}

func newPackager(t *testing.T, scorer packager.Scorer, recorder packager.Recorder) *packager.Packager {
	t.Helper()
	p, err := packager.New(testOptions(), scorer, recorder, nil)
	if err != nil {
		t.Fatalf("new packager: %v", err)
	}
	return p
}

func writeValidResults(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, video := range testsupport.TestVideos {
		testsupport.WriteRecords(t, dir, video, []submission.Record{testsupport.ValidRecord()})
	}
	return dir
}

func TestPackageWritesCanonicalArchive(t *testing.T) {
	resultsDir := writeValidResults(t)
	outputDir := t.TempDir()

	p := newPackager(t, nil, nil)
	result, err := p.Package(context.Background(), resultsDir, outputDir, "")
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	wantPath := filepath.Join(outputDir, "takehome_fixture_baseline.zip")
	if result.ArchivePath != wantPath {
		t.Fatalf("archive path = %q, want %q", result.ArchivePath, wantPath)
	}
	if len(result.ArchiveSHA) != 64 {
		t.Fatalf("archive sha = %q, want 64 hex chars", result.ArchiveSHA)
	}

	reader, err := zip.OpenReader(result.ArchivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != len(testsupport.TestVideos) {
		t.Fatalf("archive holds %d entries, want %d", len(reader.File), len(testsupport.TestVideos))
	}
	for i, video := range testsupport.TestVideos {
		want := submission.FileForVideo(video)
		if reader.File[i].Name != want {
			t.Fatalf("entry %d = %q, want %q", i, reader.File[i].Name, want)
		}
	}
}

func TestPackageIsByteIdenticalAcrossRuns(t *testing.T) {
	resultsDir := writeValidResults(t)
	outputDir := t.TempDir()
	p := newPackager(t, nil, nil)

	first, err := p.Package(context.Background(), resultsDir, outputDir, "")
	if err != nil {
		t.Fatalf("first package: %v", err)
	}
	firstBytes, err := os.ReadFile(first.ArchivePath)
	if err != nil {
		t.Fatalf("read first archive: %v", err)
	}

	second, err := p.Package(context.Background(), resultsDir, outputDir, "")
	if err != nil {
		t.Fatalf("second package: %v", err)
	}
	secondBytes, err := os.ReadFile(second.ArchivePath)
	if err != nil {
		t.Fatalf("read second archive: %v", err)
	}

	if first.ArchiveSHA != second.ArchiveSHA {
		t.Fatalf("sha changed between runs: %s vs %s", first.ArchiveSHA, second.ArchiveSHA)
	}
	if string(firstBytes) != string(secondBytes) {
		t.Fatal("archive bytes changed between identical runs")
	}
}

func TestPackageRejectsInvalidSubmission(t *testing.T) {
	resultsDir := t.TempDir()
	bad := testsupport.ValidRecord()
	bad.Confidence = 2
	testsupport.WriteRecords(t, resultsDir, testsupport.TestVideos[0], []submission.Record{bad})
	outputDir := t.TempDir()

	recorder := &fakeRecorder{}
	p := newPackager(t, nil, recorder)
	result, err := p.Package(context.Background(), resultsDir, outputDir, "")
	if !errors.Is(err, submission.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if result == nil || result.Report == nil || len(result.Report.Violations) == 0 {
		t.Fatal("expected result to carry the violation report")
	}
	if result.ArchivePath != "" {
		t.Fatalf("no archive should be produced, got %q", result.ArchivePath)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("output dir should be empty, found %v", entries)
	}

	if len(recorder.runs) != 1 || recorder.runs[0].Outcome != history.OutcomeRejected {
		t.Fatalf("expected one rejected history run, got %+v", recorder.runs)
	}
}

func TestPackageRecordsPackagedRun(t *testing.T) {
	resultsDir := writeValidResults(t)
	recorder := &fakeRecorder{}
	p := newPackager(t, nil, recorder)

	result, err := p.Package(context.Background(), resultsDir, t.TempDir(), "")
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	if len(recorder.runs) != 1 {
		t.Fatalf("expected one history run, got %d", len(recorder.runs))
	}
	run := recorder.runs[0]
	if run.Outcome != history.OutcomePackaged {
		t.Fatalf("outcome = %s, want packaged", run.Outcome)
	}
	if run.ArchiveSHA != result.ArchiveSHA || run.ArchivePath != result.ArchivePath {
		t.Fatalf("history run archive fields diverge from result: %+v", run)
	}
	if run.Files != 2 || run.Records != 2 {
		t.Fatalf("run counts = %d files / %d records, want 2/2", run.Files, run.Records)
	}
}

func TestPackageScoresAgainstGroundTruth(t *testing.T) {
	resultsDir := writeValidResults(t)
	gtDir := t.TempDir()
	testsupport.WriteGroundTruth(t, gtDir, testsupport.TestVideos, []submission.Record{testsupport.ValidRecord()})

	scorer := &fakeScorer{report: &reidhota.Report{IOUHOTA: 0.5, IOUIDF1: 0.6}}
	p := newPackager(t, scorer, nil)
	result, err := p.Package(context.Background(), resultsDir, t.TempDir(), gtDir)
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	if scorer.calls != 1 {
		t.Fatalf("scorer invoked %d times, want 1", scorer.calls)
	}
	if result.Metrics == nil || result.Metrics.IOUHOTA != 0.5 {
		t.Fatalf("metrics not propagated: %+v", result.Metrics)
	}
}

func TestPackageKeepsArchiveWhenScoringFails(t *testing.T) {
	resultsDir := writeValidResults(t)
	scorer := &fakeScorer{err: errors.New("evaluator crashed")}
	p := newPackager(t, scorer, nil)

	result, err := p.Package(context.Background(), resultsDir, t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("scoring failure must not fail the run: %v", err)
	}
	if result.MetricsErr == nil {
		t.Fatal("expected MetricsErr to carry the scoring failure")
	}
	if _, statErr := os.Stat(result.ArchivePath); statErr != nil {
		t.Fatalf("archive should survive a scoring failure: %v", statErr)
	}
}

func TestPackageSkipsScorerWithoutGroundTruth(t *testing.T) {
	resultsDir := writeValidResults(t)
	scorer := &fakeScorer{report: &reidhota.Report{}}
	p := newPackager(t, scorer, nil)

	result, err := p.Package(context.Background(), resultsDir, t.TempDir(), "")
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer should not run without ground truth, ran %d times", scorer.calls)
	}
	if result.Metrics != nil {
		t.Fatalf("unexpected metrics: %+v", result.Metrics)
	}
}

func TestPackageMissingResultsDirFailsPreflight(t *testing.T) {
	p := newPackager(t, nil, nil)
	_, err := p.Package(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), "")
	if err == nil || !strings.Contains(err.Error(), "preflight") {
		t.Fatalf("expected preflight failure for missing results directory, got %v", err)
	}
}

func TestPackageLeavesOnlyArchiveInOutputDir(t *testing.T) {
	// Staging happens inside the output directory; it must be gone once
	// the run completes.
	resultsDir := writeValidResults(t)
	outputDir := t.TempDir()
	p := newPackager(t, nil, nil)

	if _, err := p.Package(context.Background(), resultsDir, outputDir, ""); err != nil {
		t.Fatalf("package: %v", err)
	}
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "takehome_fixture_baseline.zip" {
		t.Fatalf("expected only the archive in output dir, found %v", entries)
	}
}

func TestNewRejectsSubmissionNameWithUnderscore(t *testing.T) {
	opts := testOptions()
	opts.Name = "my_run"
	if _, err := packager.New(opts, nil, nil, nil); err == nil {
		t.Fatal("expected underscore in submission name to be rejected")
	}
}

func TestArchiveName(t *testing.T) {
	p := newPackager(t, nil, nil)
	if got := p.ArchiveName(); got != "takehome_fixture_baseline.zip" {
		t.Fatalf("archive name = %q", got)
	}
}
