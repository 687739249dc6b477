package reidhota

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"reidsubmit/internal/services"
	"reidsubmit/internal/submission"
)

// GroundTruthFile is the per-video ground-truth filename expected under
// <ground-truth-dir>/<video>/.
const GroundTruthFile = "gt" + submission.FileExtension

// Report carries the leaderboard-visible subset of the computed metrics.
// The lat/long figures stay zero when the submission carries no
// geolocation values.
type Report struct {
	IOUHOTA       float64 `json:"iou_HOTA"`
	IOUIDF1       float64 `json:"iou_IDF1"`
	LatLonHOTA    float64 `json:"latlon_HOTA"`
	LatLonIDF1    float64 `json:"latlon_IDF1"`
	LatLonScored  bool    `json:"latlon_scored"`
	VideosScored  int     `json:"videos_scored"`
	ElapsedMillis int64   `json:"elapsed_ms"`
}

// Executor abstracts command execution for testability. It returns the
// tool's stdout.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor Executor) Option {
	return func(c *Client) {
		if executor != nil {
			c.exec = executor
		}
	}
}

// Client wraps reid-hota CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a reid-hota client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("reid-hota binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Evaluate scores resultsDir against groundTruthDir for the given dataset
// videos. Every video must have a ground-truth file; results files may be
// absent (scored as zero detections by the tool).
func (c *Client) Evaluate(ctx context.Context, resultsDir, groundTruthDir string, videos []string) (*Report, error) {
	if err := VerifyGroundTruth(groundTruthDir, videos); err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"evaluate",
		"--results", resultsDir,
		"--ground-truth", groundTruthDir,
		"--videos", strings.Join(videos, ","),
		"--format", "json",
	}
	started := time.Now()
	stdout, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "reid-hota", "evaluate", fmt.Sprintf("timed out after %s", c.timeout), err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "reid-hota", "evaluate", "scoring failed", err)
	}

	report, err := parseReport(stdout)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "reid-hota", "evaluate", "unreadable report", err)
	}
	report.VideosScored = len(videos)
	report.ElapsedMillis = time.Since(started).Milliseconds()
	return report, nil
}

// VerifyGroundTruth confirms that every dataset video has a ground-truth
// file at <dir>/<video>/gt.csv. Unlike result files, ground truth is never
// optional.
func VerifyGroundTruth(dir string, videos []string) error {
	for _, video := range videos {
		path := filepath.Join(dir, video, GroundTruthFile)
		if _, err := os.Stat(path); err != nil {
			return services.Wrap(services.ErrNotFound, "reid-hota", "ground truth", fmt.Sprintf("missing ground truth file %s", path), nil)
		}
	}
	return nil
}

// parseReport extracts the report from the tool's stdout. The tool may
// print progress lines before the JSON document, so decoding starts at the
// first opening brace.
func parseReport(stdout []byte) (*Report, error) {
	idx := bytes.IndexByte(stdout, '{')
	if idx < 0 {
		return nil, fmt.Errorf("no JSON document in output (%d bytes)", len(stdout))
	}
	var report Report
	if err := json.Unmarshal(stdout[idx:], &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
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
		return nil, fmt.Errorf("%s %s: %s", binary, strings.Join(args, " "), detail)
	}
	return stdout.Bytes(), nil
}
