package pattern

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadCSV parses a comma separated scan table into numeric rows. A leading
// non-numeric line is treated as a header. Later rows with a non-numeric or
// empty field, or with broken quoting, are returned empty so that Load
// counts them as malformed. Each line is parsed on its own so a stray quote
// never swallows the rows after it.
func ReadCSV(r io.Reader) ([][]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows [][]float64
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		row, ok := parseLine(line)
		if !ok && first {
			first = false
			continue
		}
		first = false
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func parseLine(line string) ([]float64, bool) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	rec, err := cr.Read()
	if err != nil {
		return nil, false
	}
	return parseRow(rec)
}

func parseRow(rec []string) ([]float64, bool) {
	row := make([]float64, 0, len(rec))
	for _, field := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, false
		}
		row = append(row, v)
	}
	return row, true
}

// LoadFile reads and converts the scan table at path.
func LoadFile(path string) (ScanPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open scan pattern %q: %v", ErrConfig, path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	return Load(rows)
}
