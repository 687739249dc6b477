// Package history persists a local log of packaging runs in SQLite.
//
// Every `package` invocation records the dataset, submission name, archive
// path and checksum, and the validation outcome, so a performer can see
// what they actually shipped to the leaderboard and whether a re-run
// produced identical archive bytes.
package history
