package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Submission.Leaderboard = strings.TrimSpace(c.Submission.Leaderboard)
	if c.Submission.Leaderboard == "" {
		c.Submission.Leaderboard = defaultLeaderboard
	}
	c.Submission.TaskMode = strings.ToLower(strings.TrimSpace(c.Submission.TaskMode))
	if c.Submission.TaskMode == "" {
		c.Submission.TaskMode = defaultTaskMode
	}

	if c.Validation.FrameWidth == 0 {
		c.Validation.FrameWidth = defaultFrameWidth
	}
	if c.Validation.FrameHeight == 0 {
		c.Validation.FrameHeight = defaultFrameHeight
	}

	c.normalizeLogging()

	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}

	c.Metrics.Binary = strings.TrimSpace(c.Metrics.Binary)
	if c.Metrics.Binary == "" {
		c.Metrics.Binary = defaultMetricsBinary
	}
	if c.Metrics.TimeoutSeconds <= 0 {
		c.Metrics.TimeoutSeconds = defaultMetricsTimeout
	}

	c.Generator.FFprobeBinary = strings.TrimSpace(c.Generator.FFprobeBinary)
	if c.Generator.FFprobeBinary == "" {
		c.Generator.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Generator.Subjects <= 0 {
		c.Generator.Subjects = defaultGenSubjects
	}

	if c.Datasets == nil {
		c.Datasets = Default().Datasets
	}
	for name, videos := range c.Datasets {
		trimmed := make([]string, 0, len(videos))
		for _, video := range videos {
			if video = strings.TrimSpace(video); video != "" {
				trimmed = append(trimmed, video)
			}
		}
		c.Datasets[name] = trimmed
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = defaultLogFormat
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
