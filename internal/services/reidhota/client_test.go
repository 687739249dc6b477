package reidhota_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reidsubmit/internal/services"
	"reidsubmit/internal/services/reidhota"
	"reidsubmit/internal/submission"
	"reidsubmit/internal/testsupport"
)

type fakeExecutor struct {
	stdout []byte
	err    error
	binary string
	args   []string
}

func (e *fakeExecutor) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	e.binary = binary
	e.args = args
	return e.stdout, e.err
}

func newClient(t *testing.T, executor reidhota.Executor) *reidhota.Client {
	t.Helper()
	client, err := reidhota.New("reid-hota", 60, reidhota.WithExecutor(executor))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func groundTruthDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.WriteGroundTruth(t, dir, testsupport.TestVideos, []submission.Record{testsupport.ValidRecord()})
	return dir
}

func TestEvaluateParsesReport(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte(`{"iou_HOTA":0.82,"iou_IDF1":0.79,"latlon_HOTA":0,"latlon_IDF1":0,"latlon_scored":false}`)}
	client := newClient(t, executor)

	report, err := client.Evaluate(context.Background(), t.TempDir(), groundTruthDir(t), testsupport.TestVideos)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.IOUHOTA != 0.82 || report.IOUIDF1 != 0.79 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.VideosScored != len(testsupport.TestVideos) {
		t.Fatalf("videos scored = %d, want %d", report.VideosScored, len(testsupport.TestVideos))
	}
	if executor.binary != "reid-hota" {
		t.Fatalf("binary = %q", executor.binary)
	}
	if executor.args[0] != "evaluate" {
		t.Fatalf("first arg = %q, want evaluate", executor.args[0])
	}
	joined := strings.Join(executor.args, " ")
	if !strings.Contains(joined, "--format json") {
		t.Fatalf("args missing JSON format flag: %q", joined)
	}
	if !strings.Contains(joined, strings.Join(testsupport.TestVideos, ",")) {
		t.Fatalf("args missing video list: %q", joined)
	}
}

func TestEvaluateSkipsProgressLines(t *testing.T) {
	stdout := "scoring vlincs-cam-a...\nscoring vlincs-cam-b...\n" +
		`{"iou_HOTA":0.5,"iou_IDF1":0.5,"latlon_HOTA":0.4,"latlon_IDF1":0.3,"latlon_scored":true}`
	client := newClient(t, &fakeExecutor{stdout: []byte(stdout)})

	report, err := client.Evaluate(context.Background(), t.TempDir(), groundTruthDir(t), testsupport.TestVideos)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !report.LatLonScored || report.LatLonHOTA != 0.4 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestEvaluateMissingGroundTruthIsFatal(t *testing.T) {
	client := newClient(t, &fakeExecutor{stdout: []byte("{}")})

	_, err := client.Evaluate(context.Background(), t.TempDir(), t.TempDir(), testsupport.TestVideos)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestEvaluateToolFailure(t *testing.T) {
	client := newClient(t, &fakeExecutor{err: errors.New("exit status 2")})

	_, err := client.Evaluate(context.Background(), t.TempDir(), groundTruthDir(t), testsupport.TestVideos)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestEvaluateNonJSONOutput(t *testing.T) {
	client := newClient(t, &fakeExecutor{stdout: []byte("no report today\n")})

	_, err := client.Evaluate(context.Background(), t.TempDir(), groundTruthDir(t), testsupport.TestVideos)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestVerifyGroundTruth(t *testing.T) {
	dir := groundTruthDir(t)
	if err := reidhota.VerifyGroundTruth(dir, testsupport.TestVideos); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := reidhota.VerifyGroundTruth(dir, append(testsupport.TestVideos, "vlincs-cam-c")); err == nil {
		t.Fatal("expected missing ground truth to fail verification")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := reidhota.New("  ", 60); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
