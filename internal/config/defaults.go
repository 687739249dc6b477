package config

const (
	defaultLeaderboard    = "takehome"
	defaultTaskMode       = "reid"
	defaultFrameWidth     = 1920
	defaultFrameHeight    = 1080
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultHistoryPath    = "~/.local/share/reidsubmit/history.db"
	defaultMetricsBinary  = "reid-hota"
	defaultMetricsTimeout = 600
	defaultFFprobeBinary  = "ffprobe"
	defaultGenSubjects    = 10
)

// Default returns a Config populated with repository defaults, including
// the debug dataset shipped with the leaderboard examples.
func Default() Config {
	return Config{
		Submission: Submission{
			Leaderboard: defaultLeaderboard,
			TaskMode:    defaultTaskMode,
		},
		Validation: Validation{
			FrameWidth:  defaultFrameWidth,
			FrameHeight: defaultFrameHeight,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Metrics: Metrics{
			Binary:         defaultMetricsBinary,
			TimeoutSeconds: defaultMetricsTimeout,
		},
		Generator: Generator{
			FFprobeBinary: defaultFFprobeBinary,
			Subjects:      defaultGenSubjects,
		},
		Datasets: map[string][]string{
			"debug": {
				"vlincs_MS02_MC0002_MCAM318_2018-03-15_15-00-01",
				"vlincs_MS02_MC0002_MCAM310_2018-03-15_15-00-06",
			},
		},
	}
}
