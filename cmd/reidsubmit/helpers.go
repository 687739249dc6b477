package main

import (
	"strings"

	"reidsubmit/internal/config"
	"reidsubmit/internal/submission"
)

// resolveTaskMode picks the flag value when present, the configured value
// otherwise.
func resolveTaskMode(cfg *config.Config, flag string) (submission.TaskMode, error) {
	if strings.TrimSpace(flag) != "" {
		return submission.ParseTaskMode(flag)
	}
	return submission.ParseTaskMode(cfg.Submission.TaskMode)
}

// validatorOptions assembles validator options from config and command
// inputs.
func validatorOptions(cfg *config.Config, dataset string, videos []string, taskMode submission.TaskMode) submission.Options {
	return submission.Options{
		Dataset:     dataset,
		Videos:      videos,
		TaskMode:    taskMode,
		FrameWidth:  cfg.Validation.FrameWidth,
		FrameHeight: cfg.Validation.FrameHeight,
	}
}
