package ffprobe_test

import (
	"context"
	"errors"
	"testing"

	"reidsubmit/internal/services"
	"reidsubmit/internal/services/ffprobe"
)

type fakeExecutor struct {
	stdout []byte
	err    error
	args   []string
}

func (e *fakeExecutor) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	e.args = args
	return e.stdout, e.err
}

func newProber(t *testing.T, executor ffprobe.Executor) *ffprobe.Prober {
	t.Helper()
	prober, err := ffprobe.New("ffprobe", ffprobe.WithExecutor(executor))
	if err != nil {
		t.Fatalf("new prober: %v", err)
	}
	return prober
}

func TestProbeParsesStreamMetadata(t *testing.T) {
	executor := &fakeExecutor{stdout: []byte(`{
		"streams": [{"width": 1920, "height": 1080, "nb_read_packets": "300"}]
	}`)}
	stats, err := newProber(t, executor).Probe(context.Background(), "cam.mp4")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if stats.FrameCount != 300 || stats.Width != 1920 || stats.Height != 1080 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if executor.args[len(executor.args)-1] != "cam.mp4" {
		t.Fatalf("video path not passed as final argument: %v", executor.args)
	}
}

func TestProbeNoVideoStream(t *testing.T) {
	prober := newProber(t, &fakeExecutor{stdout: []byte(`{"streams": []}`)})
	if _, err := prober.Probe(context.Background(), "audio.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestProbeZeroFrames(t *testing.T) {
	prober := newProber(t, &fakeExecutor{stdout: []byte(`{
		"streams": [{"width": 1920, "height": 1080, "nb_read_packets": "0"}]
	}`)})
	if _, err := prober.Probe(context.Background(), "empty.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestProbeToolFailure(t *testing.T) {
	prober := newProber(t, &fakeExecutor{err: errors.New("exit status 1")})
	if _, err := prober.Probe(context.Background(), "missing.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ffprobe.New(""); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
