package sunspot

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/ionoview/internal/rawio"
)

// sidcField is the 0-based SSN column of the SIDC daily CSV.
const sidcField = 4

// day is a calendar date without time of day or location.
type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{year: y, month: m, day: d}
}

// Table maps calendar dates to daily sunspot numbers.
type Table struct {
	values  map[day]int
	skipped int
}

// Load reads a sunspot table from path. Gzip and zstd compressed tables are
// decompressed transparently.
func Load(path string) (*Table, error) {
	rc, err := rawio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sunspot table: %w", err)
	}
	defer rc.Close() //nolint:errcheck // read-only handle

	t, err := Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read sunspot table %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a sunspot table from r. Malformed lines are skipped and
// counted; only I/O failures are returned as errors. When a date appears more
// than once the last row wins.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{values: make(map[day]int)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, ssn, ok := parseLine(line)
		if !ok {
			t.skipped++
			continue
		}
		t.values[d] = ssn
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseLine(line string) (day, int, bool) {
	var fields []string
	var ssnField string
	if strings.Contains(line, ";") {
		fields = strings.Split(line, ";")
		if len(fields) <= sidcField {
			return day{}, 0, false
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		ssnField = fields[sidcField]
	} else {
		fields = strings.Fields(line)
		if len(fields) < 4 {
			return day{}, 0, false
		}
		ssnField = fields[len(fields)-1]
	}

	var ymd [3]int
	for i := range ymd {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return day{}, 0, false
		}
		ymd[i] = v
	}
	if ymd[1] < 1 || ymd[1] > 12 {
		return day{}, 0, false
	}
	d := day{year: ymd[0], month: time.Month(ymd[1]), day: ymd[2]}
	// Reject dates such as 31 February that time.Date would normalise.
	if dayOf(time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)) != d {
		return day{}, 0, false
	}

	ssn, err := strconv.Atoi(ssnField)
	if err != nil || ssn < 0 {
		return day{}, 0, false
	}
	return d, ssn, true
}

// Resolve returns the sunspot number recorded for the calendar date of t.
// The date is taken in t's own location. There is no interpolation: a
// missing date reports false.
func (t *Table) Resolve(at time.Time) (int, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.values[dayOf(at)]
	return v, ok
}

// ResolveOr is Resolve with a caller default for missing dates.
// Callers passing 0 must read the result as "unknown", not "no activity".
func (t *Table) ResolveOr(at time.Time, def int) int {
	if v, ok := t.Resolve(at); ok {
		return v
	}
	return def
}

// Len returns the number of distinct dates in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Skipped returns the number of malformed lines ignored while parsing.
func (t *Table) Skipped() int {
	if t == nil {
		return 0
	}
	return t.skipped
}
