// Package packager orchestrates the submission pipeline: validate a
// results directory, archive the accepted files under the canonical
// leaderboard name, optionally score against ground truth, and record the
// run in the local history.
//
// Validation failure is fatal to packaging and produces no archive.
// Scoring failure is reported but never invalidates an archive that was
// already written; packaging and scoring are independent concerns.
package packager
