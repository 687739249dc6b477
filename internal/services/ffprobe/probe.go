// Package ffprobe reads video stream metadata (frame count and dimensions)
// for the synthetic generator. It shells out to ffprobe with JSON output
// and exposes a testable executor seam.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"reidsubmit/internal/services"
)

// Stats describes the first video stream of a file.
type Stats struct {
	FrameCount int
	Width      uint64
	Height     uint64
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the prober.
type Option func(*Prober)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(p *Prober) {
		if executor != nil {
			p.exec = executor
		}
	}
}

// Prober wraps ffprobe invocations.
type Prober struct {
	binary string
	exec   Executor
}

// New constructs a Prober.
func New(binary string, opts ...Option) (*Prober, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffprobe binary required")
	}
	prober := &Prober{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(prober)
	}
	return prober, nil
}

type probeOutput struct {
	Streams []struct {
		Width    uint64 `json:"width"`
		Height   uint64 `json:"height"`
		NbFrames string `json:"nb_read_packets"`
	} `json:"streams"`
}

// Probe returns frame count and dimensions for the given video file.
func (p *Prober) Probe(ctx context.Context, path string) (Stats, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,nb_read_packets",
		"-of", "json",
		path,
	}
	stdout, err := p.exec.Run(ctx, p.binary, args)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", fmt.Sprintf("probe %s", path), err)
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return Stats{}, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", "unreadable probe output", err)
	}
	if len(out.Streams) == 0 {
		return Stats{}, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", fmt.Sprintf("%s has no video stream", path), nil)
	}
	stream := out.Streams[0]
	frames, err := strconv.Atoi(strings.TrimSpace(stream.NbFrames))
	if err != nil || frames <= 0 {
		return Stats{}, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", fmt.Sprintf("%s reported no frames", path), nil)
	}
	if stream.Width == 0 || stream.Height == 0 {
		return Stats{}, services.Wrap(services.ErrExternalTool, "ffprobe", "probe", fmt.Sprintf("%s reported zero dimensions", path), nil)
	}
	return Stats{FrameCount: frames, Width: stream.Width, Height: stream.Height}, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("%s: %s", binary, detail)
	}
	return stdout.Bytes(), nil
}
