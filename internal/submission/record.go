package submission

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FileExtension is the required extension for per-video output files.
const FileExtension = ".csv"

// Columns is the canonical column list for an output file. Both the names
// and the order are load-bearing: downstream scoring tools read files
// positionally, so a reordered header is rejected rather than remapped.
var Columns = []string{
	"frame_id",
	"object_id",
	"x",
	"y",
	"w",
	"h",
	"confidence",
	"class_id",
	"lat",
	"long",
	"alt",
}

// Detection class identifiers accepted in the class_id column.
const (
	ClassPerson  uint64 = 1
	ClassVehicle uint64 = 2
	ClassOther   uint64 = 3
)

// Record is one detection row in a per-video output file.
type Record struct {
	FrameID    uint64
	ObjectID   uint64
	X          uint64
	Y          uint64
	W          uint64
	H          uint64
	Confidence float64
	ClassID    uint64
	Lat        float64
	Long       float64
	Alt        float32
}

// NaNCell is the literal used for lat/long/alt cells that carry no value.
// Under ReID-only task mode every geolocation cell must hold this sentinel;
// omitting the columns instead is a schema violation.
const NaNCell = "NaN"

// Row encodes the record as CSV cells in canonical column order.
func (r Record) Row() []string {
	return []string{
		strconv.FormatUint(r.FrameID, 10),
		strconv.FormatUint(r.ObjectID, 10),
		strconv.FormatUint(r.X, 10),
		strconv.FormatUint(r.Y, 10),
		strconv.FormatUint(r.W, 10),
		strconv.FormatUint(r.H, 10),
		strconv.FormatFloat(r.Confidence, 'g', -1, 64),
		strconv.FormatUint(r.ClassID, 10),
		formatFloatCell(r.Lat, 64),
		formatFloatCell(r.Long, 64),
		formatFloatCell(float64(r.Alt), 32),
	}
}

func formatFloatCell(v float64, bits int) string {
	if math.IsNaN(v) {
		return NaNCell
	}
	return strconv.FormatFloat(v, 'g', -1, bits)
}

// TaskMode selects which evaluation tasks a submission targets, which in
// turn decides whether the geolocation columns must carry the NaN sentinel
// or real values.
type TaskMode string

const (
	// TaskReID targets re-identification only. lat/long/alt must be NaN.
	TaskReID TaskMode = "reid"
	// TaskReIDGeoLoc targets re-identification plus geolocation. lat/long
	// must be in range (or NaN for frames without a fix).
	TaskReIDGeoLoc TaskMode = "reid-geoloc"
)

// ParseTaskMode normalizes a user-supplied task mode string.
func ParseTaskMode(value string) (TaskMode, error) {
	switch TaskMode(strings.ToLower(strings.TrimSpace(value))) {
	case TaskReID:
		return TaskReID, nil
	case TaskReIDGeoLoc:
		return TaskReIDGeoLoc, nil
	default:
		return "", fmt.Errorf("task mode: unsupported value %q (expected %q or %q)", value, TaskReID, TaskReIDGeoLoc)
	}
}

// VideoForFile maps an output filename to its video identifier, or false
// when the file does not use the submission extension.
func VideoForFile(filename string) (string, bool) {
	if !strings.HasSuffix(filename, FileExtension) {
		return "", false
	}
	return strings.TrimSuffix(filename, FileExtension), true
}

// FileForVideo returns the output filename for a video identifier.
func FileForVideo(video string) string {
	return video + FileExtension
}
