package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSubmission(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateDatasets(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSubmission() error {
	if strings.ContainsAny(c.Submission.Leaderboard, "_/\\") {
		return fmt.Errorf("submission.leaderboard %q must not contain underscores or path separators (it is an archive name component)", c.Submission.Leaderboard)
	}
	switch c.Submission.TaskMode {
	case "reid", "reid-geoloc":
		return nil
	default:
		return fmt.Errorf("submission.task_mode must be \"reid\" or \"reid-geoloc\", got %q", c.Submission.TaskMode)
	}
}

func (c *Config) validateValidation() error {
	if c.Validation.FrameWidth == 0 || c.Validation.FrameHeight == 0 {
		return errors.New("validation.frame_width and validation.frame_height must be positive")
	}
	return nil
}

func (c *Config) validateDatasets() error {
	if len(c.Datasets) == 0 {
		return errors.New("at least one [datasets] entry is required")
	}
	for name, videos := range c.Datasets {
		if strings.TrimSpace(name) == "" {
			return errors.New("dataset names must not be blank")
		}
		if strings.ContainsAny(name, "_/\\") {
			return fmt.Errorf("dataset name %q must not contain underscores or path separators (it is an archive name component)", name)
		}
		if len(videos) == 0 {
			return fmt.Errorf("dataset %q has no videos", name)
		}
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.TimeoutSeconds <= 0 {
		return errors.New("metrics.timeout_seconds must be positive")
	}
	return nil
}
