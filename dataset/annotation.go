package dataset

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Record is one line of a partition annotation file:
//
//	<video path> <start frame> <end frame> <label> [<label> ...]
//
// Frame numbers are inclusive. Only the first label is used for
// classification.
type Record struct {
	Path       string
	StartFrame int
	EndFrame   int
	Labels     []int
}

// NumFrames is the number of frames between StartFrame and EndFrame inclusive.
func (r Record) NumFrames() int {
	return r.EndFrame - r.StartFrame + 1
}

// Label is the record's primary label.
func (r Record) Label() int {
	return r.Labels[0]
}

// ReadAnnotations parses annotation lines. Blank lines and lines starting
// with '#' are skipped.
func ReadAnnotations(r io.Reader) ([]Record, error) {
	var records []Record
	s := bufio.NewScanner(r)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, errors.Errorf("line %d: expected path, start frame, end frame and label, got %d fields", lineno, len(fields))
		}
		nums := make([]int, len(fields)-1)
		for i, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: field %d", lineno, i+2)
			}
			nums[i] = n
		}

		rec := Record{
			Path:       fields[0],
			StartFrame: nums[0],
			EndFrame:   nums[1],
			Labels:     nums[2:],
		}
		if rec.StartFrame < 0 || rec.EndFrame < rec.StartFrame {
			return nil, errors.Errorf("line %d: bad frame range %d..%d", lineno, rec.StartFrame, rec.EndFrame)
		}
		for _, l := range rec.Labels {
			if l < 0 {
				return nil, errors.Errorf("line %d: negative label %d", lineno, l)
			}
		}
		records = append(records, rec)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "scan annotations")
	}
	return records, nil
}

// ReadAnnotationFile parses the annotation file at path.
func ReadAnnotationFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open annotation file")
	}
	defer f.Close()

	records, err := ReadAnnotations(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return records, nil
}
