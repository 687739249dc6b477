package submission

import (
	"fmt"
	"strconv"
)

// Kind classifies a schema violation. Missing data, malformed data, and
// out-of-range data are distinct kinds so reports tell a performer exactly
// what to fix.
type Kind string

const (
	// KindMissingColumn marks a required column absent from the header.
	KindMissingColumn Kind = "missing_column"
	// KindExtraColumn marks a column beyond the fixed schema.
	KindExtraColumn Kind = "extra_column"
	// KindMisorderedHeader marks a header with the right columns in the
	// wrong order.
	KindMisorderedHeader Kind = "misordered_header"
	// KindMalformedRow marks a data row whose cell count does not match
	// the header, or a row the CSV codec could not decode.
	KindMalformedRow Kind = "malformed_row"
	// KindMissingValue marks an empty cell in a required field.
	KindMissingValue Kind = "missing_value"
	// KindWrongType marks a cell whose lexical type differs from the
	// declared one, e.g. a float literal in an integer identifier.
	KindWrongType Kind = "wrong_type"
	// KindOutOfRange marks a well-typed value outside its legal range.
	KindOutOfRange Kind = "out_of_range"
	// KindDisabledTaskValue marks a real geolocation value in a column
	// the task mode requires to be NaN.
	KindDisabledTaskValue Kind = "disabled_task_value"
	// KindUnknownVideo marks an output file not named after any video in
	// the dataset.
	KindUnknownVideo Kind = "unknown_video"
)

// FileLevelRow is the row index used for violations that concern a whole
// file rather than a specific record.
const FileLevelRow = -1

// Violation pinpoints one schema failure: which file, which data row
// (zero-based, FileLevelRow for file-level problems), which field, and why.
type Violation struct {
	File    string
	Row     int
	Field   string
	Kind    Kind
	Message string
}

func (v Violation) String() string {
	loc := v.File
	if v.Row != FileLevelRow {
		loc += " row " + strconv.Itoa(v.Row)
	}
	if v.Field != "" {
		loc += " field " + v.Field
	}
	return fmt.Sprintf("%s: %s: %s", loc, v.Kind, v.Message)
}

// Report aggregates the outcome of validating one submission directory.
// Violations preserve deterministic order: files lexicographically, rows
// within a file top to bottom.
type Report struct {
	Dataset    string
	TaskMode   TaskMode
	Files      int
	Records    int
	Violations []Violation
}

// OK reports whether the submission passed with zero violations.
func (r *Report) OK() bool {
	return r != nil && len(r.Violations) == 0
}

// Err converts a failed report into an error suitable for CLI exit
// handling. A passing report yields nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d schema violation(s) across %d file(s)", ErrSchema, len(r.Violations), r.Files)
}
