package submission

import "errors"

// ErrSchema tags every validation failure surfaced by a Report so callers
// can distinguish "the submission is malformed" from operational failures
// like an unreadable results directory.
var ErrSchema = errors.New("submission schema violation")
