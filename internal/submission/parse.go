package submission

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// integer field positions within Columns, used to decide whether a cell
// must parse as an unsigned integer literal.
var integerColumns = map[string]bool{
	"frame_id":  true,
	"object_id": true,
	"x":         true,
	"y":         true,
	"w":         true,
	"h":         true,
	"class_id":  true,
}

// fileParser validates a single output file, cell by cell, against the
// canonical schema. It never repairs data: every anomaly becomes a
// violation and the offending row contributes no record.
type fileParser struct {
	file   string
	bounds frameBounds
	mode   TaskMode
}

type frameBounds struct {
	width  uint64
	height uint64
}

// parse reads an entire output file from r. It returns the number of valid
// records seen plus every violation found. Only transport-level failures
// (the reader itself erroring) are returned as an error.
func (p *fileParser) parse(r io.Reader) (int, []Violation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // cell-count drift is a schema violation, not a decode abort
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, p.headerViolations(nil), nil
		}
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	if vs := p.headerViolations(header); len(vs) > 0 {
		// Without a trustworthy header the column-to-cell mapping is
		// guesswork, so row checks are skipped for this file.
		return 0, vs, nil
	}

	records := 0
	var violations []Violation
	for row := 0; ; row++ {
		cells, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				violations = append(violations, Violation{
					File:    p.file,
					Row:     row,
					Kind:    KindMalformedRow,
					Message: fmt.Sprintf("cannot decode row: %v", parseErr.Err),
				})
				continue
			}
			return records, violations, fmt.Errorf("read row %d: %w", row, err)
		}
		if len(cells) != len(Columns) {
			violations = append(violations, Violation{
				File:    p.file,
				Row:     row,
				Kind:    KindMalformedRow,
				Message: fmt.Sprintf("expected %d cells, found %d", len(Columns), len(cells)),
			})
			continue
		}
		rowViolations := p.checkRow(row, cells)
		if len(rowViolations) == 0 {
			records++
		}
		violations = append(violations, rowViolations...)
	}
	return records, violations, nil
}

// headerViolations compares the header against the canonical column list.
// Missing and extra columns are reported individually; a header that has
// exactly the right columns in the wrong order gets a single misorder
// violation naming the first divergence.
func (p *fileParser) headerViolations(header []string) []Violation {
	normalized := make([]string, len(header))
	for i, name := range header {
		normalized[i] = strings.TrimSpace(name)
	}

	present := make(map[string]bool, len(normalized))
	for _, name := range normalized {
		present[name] = true
	}
	expected := make(map[string]bool, len(Columns))
	for _, name := range Columns {
		expected[name] = true
	}

	var violations []Violation
	for _, name := range Columns {
		if !present[name] {
			violations = append(violations, Violation{
				File:    p.file,
				Row:     FileLevelRow,
				Field:   name,
				Kind:    KindMissingColumn,
				Message: "required column absent from header",
			})
		}
	}
	for _, name := range normalized {
		if !expected[name] {
			violations = append(violations, Violation{
				File:    p.file,
				Row:     FileLevelRow,
				Field:   name,
				Kind:    KindExtraColumn,
				Message: "column is not part of the submission schema",
			})
		}
	}
	if len(violations) > 0 {
		return violations
	}
	for i, name := range normalized {
		if name != Columns[i] {
			return []Violation{{
				File:    p.file,
				Row:     FileLevelRow,
				Field:   name,
				Kind:    KindMisorderedHeader,
				Message: fmt.Sprintf("column %d must be %q, found %q", i, Columns[i], name),
			}}
		}
	}
	return nil
}

func (p *fileParser) checkRow(row int, cells []string) []Violation {
	var violations []Violation
	add := func(field string, kind Kind, message string) {
		violations = append(violations, Violation{
			File:    p.file,
			Row:     row,
			Field:   field,
			Kind:    kind,
			Message: message,
		})
	}

	values := make(map[string]float64, len(Columns))
	for i, field := range Columns {
		cell := strings.TrimSpace(cells[i])
		if cell == "" {
			add(field, KindMissingValue, "cell is empty")
			continue
		}
		if integerColumns[field] {
			v, ok := p.checkInteger(field, cell, add)
			if ok {
				values[field] = float64(v)
			}
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			add(field, KindWrongType, fmt.Sprintf("%q is not a numeric literal", cell))
			continue
		}
		values[field] = v
	}

	p.checkRanges(values, add)
	return violations
}

// checkInteger enforces the declared logical type: a float literal in an
// identifier column is rejected even when it is numerically integral.
func (p *fileParser) checkInteger(field, cell string, add func(string, Kind, string)) (uint64, bool) {
	v, err := strconv.ParseUint(cell, 10, 64)
	if err == nil {
		return v, true
	}
	if _, ferr := strconv.ParseFloat(cell, 64); ferr == nil {
		add(field, KindWrongType, fmt.Sprintf("%q is not an unsigned integer literal", cell))
		return 0, false
	}
	add(field, KindWrongType, fmt.Sprintf("%q is not a numeric literal", cell))
	return 0, false
}

// checkRanges applies the range constraints that survive type checking.
// Fields that already failed parsing are absent from values and skipped.
func (p *fileParser) checkRanges(values map[string]float64, add func(string, Kind, string)) {
	if v, ok := values["confidence"]; ok {
		if math.IsNaN(v) || v < 0 || v > 1 {
			add("confidence", KindOutOfRange, fmt.Sprintf("confidence %v outside [0, 1]", v))
		}
	}
	if v, ok := values["class_id"]; ok {
		id := uint64(v)
		if id != ClassPerson && id != ClassVehicle && id != ClassOther {
			add("class_id", KindOutOfRange, fmt.Sprintf("class_id %d is not one of 1 (person), 2 (vehicle), 3 (other)", id))
		}
	}

	x, hasX := values["x"]
	y, hasY := values["y"]
	if hasX && uint64(x) >= p.bounds.width {
		add("x", KindOutOfRange, fmt.Sprintf("x %d outside frame width %d", uint64(x), p.bounds.width))
		hasX = false
	}
	if hasY && uint64(y) >= p.bounds.height {
		add("y", KindOutOfRange, fmt.Sprintf("y %d outside frame height %d", uint64(y), p.bounds.height))
		hasY = false
	}
	if w, ok := values["w"]; ok && hasX && uint64(x)+uint64(w) > p.bounds.width {
		add("w", KindOutOfRange, fmt.Sprintf("x+w %d exceeds frame width %d", uint64(x)+uint64(w), p.bounds.width))
	}
	if h, ok := values["h"]; ok && hasY && uint64(y)+uint64(h) > p.bounds.height {
		add("h", KindOutOfRange, fmt.Sprintf("y+h %d exceeds frame height %d", uint64(y)+uint64(h), p.bounds.height))
	}

	p.checkGeo(values, add)
}

func (p *fileParser) checkGeo(values map[string]float64, add func(string, Kind, string)) {
	if p.mode == TaskReID {
		for _, field := range []string{"lat", "long", "alt"} {
			if v, ok := values[field]; ok && !math.IsNaN(v) {
				add(field, KindDisabledTaskValue, fmt.Sprintf("%s must be NaN when only the re-identification task is targeted, found %v", field, v))
			}
		}
		return
	}
	if v, ok := values["lat"]; ok && !math.IsNaN(v) && (v < -90 || v > 90) {
		add("lat", KindOutOfRange, fmt.Sprintf("lat %v outside [-90, 90]", v))
	}
	if v, ok := values["long"]; ok && !math.IsNaN(v) && (v < -180 || v > 180) {
		add("long", KindOutOfRange, fmt.Sprintf("long %v outside [-180, 180]", v))
	}
	if v, ok := values["alt"]; ok && math.IsInf(v, 0) {
		add("alt", KindOutOfRange, "alt must be finite or NaN")
	}
}
