package submission_test

import (
	"context"
	"math"
	"testing"

	"reidsubmit/internal/submission"
	"reidsubmit/internal/testsupport"
)

func newValidator(t *testing.T, mode submission.TaskMode) *submission.Validator {
	t.Helper()
	validator, err := submission.NewValidator(submission.Options{
		Dataset:     "fixture",
		Videos:      testsupport.TestVideos,
		TaskMode:    mode,
		FrameWidth:  1920,
		FrameHeight: 1080,
	}, nil)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	return validator
}

func TestValidateDirAcceptsValidSubmission(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[0], []submission.Record{testsupport.ValidRecord()})

	report, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected passing report, got %v", report.Violations)
	}
	if report.Files != 1 || report.Records != 1 {
		t.Fatalf("expected 1 file and 1 record, got %d/%d", report.Files, report.Records)
	}
	if err := report.Err(); err != nil {
		t.Fatalf("expected nil report error, got %v", err)
	}
}

func TestValidateDirMissingVideoFileIsNotAnError(t *testing.T) {
	// Only one of the two dataset videos has output: valid, it means the
	// other video had no detections.
	dir := t.TempDir()
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[0], []submission.Record{testsupport.ValidRecord()})

	report, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected passing report, got %v", report.Violations)
	}
}

func TestValidateDirEmptyDirectoryPasses(t *testing.T) {
	report, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.OK() || report.Files != 0 {
		t.Fatalf("expected empty passing report, got %+v", report)
	}
}

func TestValidateDirRejectsUnknownVideo(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteRecords(t, dir, "not-in-dataset", []submission.Record{testsupport.ValidRecord()})

	report, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(report.Violations) != 1 || report.Violations[0].Kind != submission.KindUnknownVideo {
		t.Fatalf("expected unknown_video, got %v", report.Violations)
	}
}

func TestValidateDirMissingDirectoryIsFatal(t *testing.T) {
	_, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), "/nonexistent/results")
	if err == nil {
		t.Fatal("expected error for missing results directory")
	}
}

func TestValidateDirIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[0], []submission.Record{testsupport.ValidRecord()})
	testsupport.WriteRawFile(t, dir, "README.txt", "notes\n")

	report, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.OK() || report.Files != 1 {
		t.Fatalf("expected stray file ignored, got %+v", report)
	}
}

func TestValidateDirDeterministicViolationOrder(t *testing.T) {
	dir := t.TempDir()
	bad := testsupport.ValidRecord()
	bad.Confidence = 1.5
	// Written in reverse lexicographic order; the report must still list
	// cam-a before cam-b.
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[1], []submission.Record{bad})
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[0], []submission.Record{bad})

	report, err := newValidator(t, submission.TaskReID).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(report.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", report.Violations)
	}
	if report.Violations[0].File != submission.FileForVideo(testsupport.TestVideos[0]) {
		t.Fatalf("expected lexicographic file order, got %v then %v",
			report.Violations[0].File, report.Violations[1].File)
	}
}

func TestValidateDirGeoLocRoundTrip(t *testing.T) {
	dir := t.TempDir()
	record := testsupport.ValidRecord()
	record.Lat = 45.5
	record.Long = -122.25
	record.Alt = 10.5
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[0], []submission.Record{record})

	report, err := newValidator(t, submission.TaskReIDGeoLoc).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.OK() {
		t.Fatalf("expected passing report, got %v", report.Violations)
	}

	// The same file under ReID-only mode must be rejected per column.
	report, err = newValidator(t, submission.TaskReID).ValidateDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(report.Violations) != 3 {
		t.Fatalf("expected lat/long/alt all rejected, got %v", report.Violations)
	}
	for _, violation := range report.Violations {
		if violation.Kind != submission.KindDisabledTaskValue {
			t.Fatalf("expected disabled_task_value, got %+v", violation)
		}
	}
}

func TestValidateDirNaNRoundTrip(t *testing.T) {
	dir := t.TempDir()
	record := testsupport.ValidRecord()
	if !math.IsNaN(record.Lat) {
		t.Fatal("fixture record should carry NaN geolocation")
	}
	testsupport.WriteRecords(t, dir, testsupport.TestVideos[0], []submission.Record{record})

	for _, mode := range []submission.TaskMode{submission.TaskReID, submission.TaskReIDGeoLoc} {
		report, err := newValidator(t, mode).ValidateDir(context.Background(), dir)
		if err != nil {
			t.Fatalf("validate in %s: %v", mode, err)
		}
		if !report.OK() {
			t.Fatalf("expected NaN geolocation accepted in %s, got %v", mode, report.Violations)
		}
	}
}

func TestNewValidatorRejectsBadOptions(t *testing.T) {
	if _, err := submission.NewValidator(submission.Options{}, nil); err == nil {
		t.Fatal("expected error for empty options")
	}
	if _, err := submission.NewValidator(submission.Options{
		Dataset:     "fixture",
		Videos:      testsupport.TestVideos,
		TaskMode:    "walk",
		FrameWidth:  1,
		FrameHeight: 1,
	}, nil); err == nil {
		t.Fatal("expected error for bad task mode")
	}
}
