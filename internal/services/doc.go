// Package services defines shared utilities consumed by the packaging
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent (schema problems vs external tool failures
//     vs configuration mistakes).
//   - Thin abstractions that make command execution against external tools
//     (reid-hota, ffprobe) testable without the binaries installed.
package services
