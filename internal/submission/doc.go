// Package submission defines the per-video output record schema for ReID
// leaderboard submissions and the validator that enforces it.
//
// A submission is a directory of CSV files, one per dataset video, each
// carrying the fixed eleven-column detection schema. The validator checks
// every row of every file against the column contract and aggregates all
// violations into a single report so a performer can fix an entire
// submission in one pass. Validation is all-or-nothing: any violation
// fails the packaging run.
package submission
