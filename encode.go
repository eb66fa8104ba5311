package performance

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts are persisted as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// fileLine structures a line from a file as the persistence layer represents it.
type fileLine struct {
	filename string
	i        int
	txt      string
}

// readLines reads all non empty lines of r. filename is for error messages only.
func readLines(filename string, r io.Reader) ([]fileLine, error) {
	var list []fileLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	i := 0
	for scanner.Scan() {
		i++
		txt := scanner.Text()
		if strings.TrimSpace(txt) == "" {
			continue
		}
		list = append(list, fileLine{filename, i, txt})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return list, nil
}

// UnmarshalJSON accepts any case for the type name.
func (t *ActivityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseActivityType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DecodeActivities reads activities from a JSONL stream, one activity per
// line. Every faulty line is reported.
func DecodeActivities(filename string, r io.Reader) ([]Activity, error) {
	lines, err := readLines(filename, r)
	if err != nil {
		return nil, err
	}
	acts := make([]Activity, 0, len(lines))
	var errs []error
	for _, l := range lines {
		var a Activity
		dec := json.NewDecoder(strings.NewReader(l.txt))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			errs = append(errs, fmt.Errorf("parse error %s:%v: %w", l.filename, l.i, err))
			continue
		}
		acts = append(acts, a)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return acts, nil
}

// EncodeActivities writes activities as JSONL, in the order given.
func EncodeActivities(w io.Writer, activities []Activity) error {
	for _, a := range activities {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(a); err != nil {
			return fmt.Errorf("cannot encode activity on %s for %q: %w", a.Date, a.Symbol, err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
